package ecommerce

// Selling Partner API Orders v0 wire types. Only the fields the engine reads
// are declared.

// AmazonMoney is the SP-API Money type
type AmazonMoney struct {
	CurrencyCode string `json:"CurrencyCode"`
	Amount       string `json:"Amount"`
}

// AmazonOrder is one entry of getOrders
type AmazonOrder struct {
	AmazonOrderID string       `json:"AmazonOrderId"`
	PurchaseDate  string       `json:"PurchaseDate"`
	LastUpdate    string       `json:"LastUpdateDate"`
	OrderStatus   string       `json:"OrderStatus"`
	OrderTotal    *AmazonMoney `json:"OrderTotal,omitempty"`
}

// AmazonOrdersResponse is the getOrders response body
type AmazonOrdersResponse struct {
	Payload struct {
		Orders    []AmazonOrder `json:"Orders"`
		NextToken string        `json:"NextToken,omitempty"`
	} `json:"payload"`
}

// AmazonOrderItem is one entry of getOrderItems. ItemPrice is the line total.
type AmazonOrderItem struct {
	OrderItemID     string       `json:"OrderItemId"`
	SellerSKU       string       `json:"SellerSKU"`
	QuantityOrdered int          `json:"QuantityOrdered"`
	ItemPrice       *AmazonMoney `json:"ItemPrice,omitempty"`
}

// AmazonOrderItemsResponse is the getOrderItems response body
type AmazonOrderItemsResponse struct {
	Payload struct {
		AmazonOrderID string            `json:"AmazonOrderId"`
		OrderItems    []AmazonOrderItem `json:"OrderItems"`
		NextToken     string            `json:"NextToken,omitempty"`
	} `json:"payload"`
}
