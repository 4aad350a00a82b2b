package dto

import (
	"time"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/service"
)

// OrderItemRequest is one cart line.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// CreateOrderRequest payload for checkout.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	Phone           string             `json:"phone"`
}

// ToInput converts the payload into service input.
func (r CreateOrderRequest) ToInput() service.OrderCreateInput {
	items := make([]service.OrderItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size})
	}
	return service.OrderCreateInput{Items: items, ShippingAddress: r.ShippingAddress, Phone: r.Phone}
}

// UpdateOrderStatusRequest payload for admin status changes.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// ProductSummaryResponse is the product data embedded in order items.
type ProductSummaryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

// OrderItemResponse is an order line.
type OrderItemResponse struct {
	ID        string                  `json:"id"`
	ProductID string                  `json:"productId"`
	Quantity  int                     `json:"quantity"`
	Size      string                  `json:"size,omitempty"`
	Price     float64                 `json:"price"`
	Product   *ProductSummaryResponse `json:"product,omitempty"`
}

// OrderResponse is an order with its items.
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	Status          domain.OrderStatus  `json:"status"`
	Total           float64             `json:"total"`
	ShippingAddress string              `json:"shippingAddress"`
	Phone           string              `json:"phone"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// OrdersResponse wraps the caller's own orders.
type OrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// OrderListResponse is one page of the admin order list.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		item := OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Price:     it.Price,
		}
		if it.Product != nil {
			item.Product = &ProductSummaryResponse{
				ID:    it.Product.ID,
				Name:  it.Product.Name,
				Image: it.Product.Image,
				Price: it.Product.Price,
			}
		}
		items = append(items, item)
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// NewOrdersResponse maps a list of orders, never producing a null array.
func NewOrdersResponse(orders []domain.Order) OrdersResponse {
	return OrdersResponse{Orders: mapOrders(orders)}
}

// NewOrderListResponse maps a service page.
func NewOrderListResponse(p *service.OrderPage) OrderListResponse {
	return OrderListResponse{
		Orders:     mapOrders(p.Orders),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func mapOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
