package ecommerce

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/omnisync/internal/domain/channel"
)

// EbayProductionAPIURL is the eBay REST API endpoint
const EbayProductionAPIURL = "https://api.ebay.com"

// EbayAdapter polls the Sell Fulfillment API
type EbayAdapter struct {
	client   *apiClient
	settings Settings
}

// NewEbayAdapter requires the access_token credential (an OAuth user token)
func NewEbayAdapter(creds channel.Credentials, s Settings) (*EbayAdapter, error) {
	if err := creds.Require(CredAccessToken); err != nil {
		return nil, err
	}
	s = s.withDefaults()
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+creds.Get(CredAccessToken))
	return &EbayAdapter{
		client:   newAPIClient("ebay", baseURLFor(creds, s.EbayBaseURL, EbayProductionAPIURL), s, headers),
		settings: s,
	}, nil
}

// Channel returns channel.Ebay
func (a *EbayAdapter) Channel() channel.Channel {
	return channel.Ebay
}

// FetchOrders pages with offset/limit while the response carries a next link
func (a *EbayAdapter) FetchOrders(ctx context.Context) iter.Seq2[*channel.OrderPayload, error] {
	return func(yield func(*channel.OrderPayload, error) bool) {
		limit := min(a.settings.PageSize, 200)
		filter := "creationdate:[" + a.settings.since().Format("2006-01-02T15:04:05.000Z") + "..]"
		offset := 0

		for page := 0; page < maxPages; page++ {
			query := url.Values{}
			query.Set("filter", filter)
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			var resp EbayOrdersResponse
			if err := a.client.getJSON(ctx, "/sell/fulfillment/v1/order", query, &resp); err != nil {
				yield(nil, err)
				return
			}
			for i := range resp.Orders {
				if !yield(toEbayPayload(&resp.Orders[i]), nil) {
					return
				}
			}
			if resp.Next == "" || len(resp.Orders) == 0 {
				return
			}
			offset += len(resp.Orders)
		}
	}
}

func toEbayPayload(o *EbayOrder) *channel.OrderPayload {
	p := &channel.OrderPayload{
		ExtID:    o.OrderID,
		Channel:  channel.Ebay,
		PlacedAt: parseTimestamp(o.CreationDate),
		Status:   mapEbayOrderStatus(o.OrderFulfillmentStatus, o.CancelStatus.CancelState),
	}
	if t := o.PricingSummary.Total; t != nil {
		p.Currency = t.Currency
		p.Total = ParseDecimal(t.Value)
	}
	for _, li := range o.LineItems {
		line := channel.OrderLinePayload{SKU: li.SKU, Quantity: li.Quantity}
		if li.LineItemCost != nil {
			line.UnitPrice = unitPrice(li.LineItemCost.Value, li.Quantity)
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

// mapEbayOrderStatus gives a completed cancellation precedence over fulfillment
func mapEbayOrderStatus(fulfillment, cancelState string) channel.OrderStatus {
	if cancelState == "CANCELED" {
		return channel.OrderStatusCancelled
	}
	if fulfillment == "FULFILLED" {
		return channel.OrderStatusShipped
	}
	// NOT_STARTED, IN_PROGRESS
	return channel.OrderStatusNew
}
