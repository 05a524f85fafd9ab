package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// OrderItem is the point-in-time copy of a product taken when the order was
// placed. It never follows later edits to the product row.
type OrderItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// OrderItems is stored as a JSON document in a text column.
type OrderItems []OrderItem

func (OrderItems) GormDataType() string {
	return "text"
}

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		items = OrderItems{}
	}
	data, err := json.Marshal([]OrderItem(items))
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	return string(data), nil
}

func (items *OrderItems) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for order items", value)
	}
	if err := json.Unmarshal(data, (*[]OrderItem)(items)); err != nil {
		return fmt.Errorf("decode order items: %w", err)
	}
	return nil
}

type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;size:32"`
	UserID          *string     `json:"userId" gorm:"size:36;index"`
	Items           OrderItems  `json:"items" gorm:"not null"`
	TotalAmount     int64       `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus `json:"status" gorm:"size:16;not null;index"`
	Priority        int         `json:"priority" gorm:"not null"`
	DeliveryFloorID uint        `json:"deliveryFloorId" gorm:"index"`
	CreatedAt       time.Time   `json:"createdAt" gorm:"index"`
}

// OrderView is an order joined with the names the dashboards display.
type OrderView struct {
	Order
	UserName          *string `json:"userName"`
	DeliveryFloorName *string `json:"deliveryFloorName,omitempty"`
}

// OrderSequence hands out the per-day order numbers.
type OrderSequence struct {
	Day     string `gorm:"primaryKey;size:8"`
	Counter int    `gorm:"not null"`
}
