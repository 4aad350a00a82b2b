package domain

import "time"

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order is a placed checkout.
type Order struct {
	ID              string
	UserID          string
	Status          OrderStatus
	Total           float64
	ShippingAddress string
	Phone           string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnedBy reports whether the order belongs to the given subject.
func (o *Order) OwnedBy(subjectID string) bool {
	return o != nil && o.UserID == subjectID
}

// OrderItem is a single line of an order. Price is captured at checkout time.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Size      string
	Price     float64
	Product   *ProductSummary
}
