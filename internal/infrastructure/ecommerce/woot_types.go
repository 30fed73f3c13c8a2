package ecommerce

// WootOrderItem is one line of a Woot order
type WootOrderItem struct {
	Sku       string `json:"Sku"`
	Quantity  int    `json:"Quantity"`
	UnitPrice string `json:"UnitPrice"`
}

// WootOrder is one entry of the Woot orders feed
type WootOrder struct {
	OrderID     string          `json:"OrderId"`
	CreatedDate string          `json:"CreatedDate"`
	Status      string          `json:"Status"`
	Currency    string          `json:"Currency"`
	Total       string          `json:"Total"`
	Items       []WootOrderItem `json:"Items"`
}

// WootOrdersResponse is one page of the Woot orders feed
type WootOrdersResponse struct {
	Orders  []WootOrder `json:"Orders"`
	HasMore bool        `json:"HasMore"`
}
