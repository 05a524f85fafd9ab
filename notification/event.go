package notification

const (
	TypeOrderUpdate   = "ORDER_UPDATE"
	TypeStockDepleted = "STOCK_DEPLETED"
)

// Event is one advisory message pushed to a connected client.
type Event struct {
	Type        string `json:"type"`
	OrderID     string `json:"orderId,omitempty"`
	Status      string `json:"status,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

func OrderUpdate(orderID, status string) Event {
	return Event{Type: TypeOrderUpdate, OrderID: orderID, Status: status}
}

func StockDepleted(productID, productName string) Event {
	return Event{Type: TypeStockDepleted, ProductID: productID, ProductName: productName}
}
