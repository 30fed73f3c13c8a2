package ecommerce

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/omnisync/internal/domain/channel"
)

// AmazonProductionAPIURL is the North America Selling Partner API endpoint
const AmazonProductionAPIURL = "https://sellingpartnerapi-na.amazon.com"

// AmazonAdapter polls the Selling Partner API Orders v0 endpoints
type AmazonAdapter struct {
	client        *apiClient
	marketplaceID string
	settings      Settings
}

// NewAmazonAdapter requires the access_token and marketplace_id credentials
func NewAmazonAdapter(creds channel.Credentials, s Settings) (*AmazonAdapter, error) {
	if err := creds.Require(CredAccessToken, CredMarketplaceID); err != nil {
		return nil, err
	}
	s = s.withDefaults()
	headers := http.Header{}
	headers.Set("x-amz-access-token", creds.Get(CredAccessToken))
	return &AmazonAdapter{
		client:        newAPIClient("amazon", baseURLFor(creds, s.AmazonBaseURL, AmazonProductionAPIURL), s, headers),
		marketplaceID: creds.Get(CredMarketplaceID),
		settings:      s,
	}, nil
}

// Channel returns channel.Amazon
func (a *AmazonAdapter) Channel() channel.Channel {
	return channel.Amazon
}

// FetchOrders pages through getOrders with NextToken and loads each order's items
func (a *AmazonAdapter) FetchOrders(ctx context.Context) iter.Seq2[*channel.OrderPayload, error] {
	return func(yield func(*channel.OrderPayload, error) bool) {
		query := url.Values{}
		query.Set("MarketplaceIds", a.marketplaceID)
		query.Set("CreatedAfter", a.settings.since().Format("2006-01-02T15:04:05Z"))
		query.Set("MaxResultsPerPage", strconv.Itoa(min(a.settings.PageSize, 100)))

		for page := 0; page < maxPages; page++ {
			var resp AmazonOrdersResponse
			if err := a.client.getJSON(ctx, "/orders/v0/orders", query, &resp); err != nil {
				yield(nil, err)
				return
			}
			for i := range resp.Payload.Orders {
				o := &resp.Payload.Orders[i]
				items, err := a.orderItems(ctx, o.AmazonOrderID)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(a.toPayload(o, items), nil) {
					return
				}
			}
			if resp.Payload.NextToken == "" {
				return
			}
			// NextToken replaces every other filter on follow-up pages
			query = url.Values{}
			query.Set("MarketplaceIds", a.marketplaceID)
			query.Set("NextToken", resp.Payload.NextToken)
		}
	}
}

func (a *AmazonAdapter) orderItems(ctx context.Context, orderID string) ([]AmazonOrderItem, error) {
	var items []AmazonOrderItem
	path := "/orders/v0/orders/" + url.PathEscape(orderID) + "/orderItems"
	var query url.Values
	for page := 0; page < maxPages; page++ {
		var resp AmazonOrderItemsResponse
		if err := a.client.getJSON(ctx, path, query, &resp); err != nil {
			return nil, err
		}
		items = append(items, resp.Payload.OrderItems...)
		if resp.Payload.NextToken == "" {
			break
		}
		query = url.Values{"NextToken": {resp.Payload.NextToken}}
	}
	return items, nil
}

func (a *AmazonAdapter) toPayload(o *AmazonOrder, items []AmazonOrderItem) *channel.OrderPayload {
	p := &channel.OrderPayload{
		ExtID:    o.AmazonOrderID,
		Channel:  channel.Amazon,
		PlacedAt: parseTimestamp(o.PurchaseDate),
		Status:   mapAmazonOrderStatus(o.OrderStatus),
	}
	if o.OrderTotal != nil {
		p.Currency = o.OrderTotal.CurrencyCode
		p.Total = ParseDecimal(o.OrderTotal.Amount)
	}
	for _, it := range items {
		line := channel.OrderLinePayload{SKU: it.SellerSKU, Quantity: it.QuantityOrdered}
		if it.ItemPrice != nil {
			line.UnitPrice = unitPrice(it.ItemPrice.Amount, it.QuantityOrdered)
			// pending orders carry no OrderTotal yet
			if p.Currency == "" {
				p.Currency = it.ItemPrice.CurrencyCode
			}
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

// mapAmazonOrderStatus maps SP-API OrderStatus values
func mapAmazonOrderStatus(status string) channel.OrderStatus {
	switch status {
	case "Shipped", "InvoiceUnconfirmed":
		return channel.OrderStatusShipped
	case "Canceled", "Unfulfillable":
		return channel.OrderStatusCancelled
	default:
		// Pending, Unshipped, PartiallyShipped, PendingAvailability
		return channel.OrderStatusNew
	}
}
