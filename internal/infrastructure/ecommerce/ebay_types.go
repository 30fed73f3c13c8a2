package ecommerce

// Sell Fulfillment API v1 wire types

// EbayAmount is the fulfillment API Amount type
type EbayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// EbayLineItem is one line of an eBay order. LineItemCost is the line total.
type EbayLineItem struct {
	LineItemID   string      `json:"lineItemId"`
	SKU          string      `json:"sku"`
	Quantity     int         `json:"quantity"`
	LineItemCost *EbayAmount `json:"lineItemCost,omitempty"`
}

// EbayOrder is one entry of getOrders
type EbayOrder struct {
	OrderID                string `json:"orderId"`
	CreationDate           string `json:"creationDate"`
	OrderFulfillmentStatus string `json:"orderFulfillmentStatus"`
	CancelStatus           struct {
		CancelState string `json:"cancelState"`
	} `json:"cancelStatus"`
	PricingSummary struct {
		Total *EbayAmount `json:"total,omitempty"`
	} `json:"pricingSummary"`
	LineItems []EbayLineItem `json:"lineItems"`
}

// EbayOrdersResponse is the getOrders response body
type EbayOrdersResponse struct {
	Orders []EbayOrder `json:"orders"`
	Next   string      `json:"next,omitempty"`
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}
