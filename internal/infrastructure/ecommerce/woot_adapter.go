package ecommerce

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/omnisync/internal/domain/channel"
)

// WootProductionAPIURL is the Woot seller API endpoint
const WootProductionAPIURL = "https://developer.woot.com/api"

// WootAdapter polls the page-numbered Woot orders feed
type WootAdapter struct {
	client   *apiClient
	settings Settings
}

// NewWootAdapter requires the api_key credential
func NewWootAdapter(creds channel.Credentials, s Settings) (*WootAdapter, error) {
	if err := creds.Require(CredAPIKey); err != nil {
		return nil, err
	}
	s = s.withDefaults()
	headers := http.Header{}
	headers.Set("x-api-key", creds.Get(CredAPIKey))
	return &WootAdapter{
		client:   newAPIClient("woot", baseURLFor(creds, s.WootBaseURL, WootProductionAPIURL), s, headers),
		settings: s,
	}, nil
}

// Channel returns channel.Woot
func (a *WootAdapter) Channel() channel.Channel {
	return channel.Woot
}

// FetchOrders walks pages from 1 while HasMore is set
func (a *WootAdapter) FetchOrders(ctx context.Context) iter.Seq2[*channel.OrderPayload, error] {
	return func(yield func(*channel.OrderPayload, error) bool) {
		since := a.settings.since().Format("2006-01-02T15:04:05Z")
		for page := 1; page <= maxPages; page++ {
			query := url.Values{}
			query.Set("page", strconv.Itoa(page))
			query.Set("pageSize", strconv.Itoa(a.settings.PageSize))
			query.Set("createdAfter", since)

			var resp WootOrdersResponse
			if err := a.client.getJSON(ctx, "/orders", query, &resp); err != nil {
				yield(nil, err)
				return
			}
			for i := range resp.Orders {
				if !yield(toWootPayload(&resp.Orders[i]), nil) {
					return
				}
			}
			if !resp.HasMore || len(resp.Orders) == 0 {
				return
			}
		}
	}
}

func toWootPayload(o *WootOrder) *channel.OrderPayload {
	status, ok := channel.ParseOrderStatus(o.Status)
	if !ok {
		status = channel.OrderStatus(o.Status)
	}
	p := &channel.OrderPayload{
		ExtID:    o.OrderID,
		Channel:  channel.Woot,
		PlacedAt: parseTimestamp(o.CreatedDate),
		Status:   status,
		Currency: o.Currency,
		Total:    ParseDecimal(o.Total),
	}
	for _, it := range o.Items {
		p.Lines = append(p.Lines, channel.OrderLinePayload{
			SKU:       it.Sku,
			Quantity:  it.Quantity,
			UnitPrice: exactPrice(it.UnitPrice),
		})
	}
	return p
}
