package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/events"
	"github.com/gs-sport/storefront/internal/repository"
	"github.com/gs-sport/storefront/internal/security"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

const (
	maxItemQuantity = 99
	maxCartLines    = 50
	maxSizeLength   = 10
)

// OrderItemInput is one cart line at checkout.
type OrderItemInput struct {
	ProductID string
	Quantity  int
	Size      string
}

// OrderCreateInput describes a checkout.
type OrderCreateInput struct {
	Items           []OrderItemInput
	ShippingAddress string
	Phone           string
}

// OrderQuery holds admin listing parameters.
type OrderQuery struct {
	Status string
	Page   Page
}

// OrderPage is one page of an admin order listing.
type OrderPage struct {
	Orders     []domain.Order
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// OrderService coordinates checkout and order access.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	sanitizer  *security.Sanitizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OrderDependencies bundles requirements for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Sanitizer   *security.Sanitizer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = security.NewSanitizer()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		sanitizer:  sanitizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create places an order for the caller, pricing each line from the catalog.
func (s *OrderService) Create(ctx context.Context, actor domain.Identity, input OrderCreateInput) (*domain.Order, error) {
	if actor.SubjectID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	address := s.sanitizer.Text(input.ShippingAddress)
	phone := strings.TrimSpace(input.Phone)
	details := map[string]any{}
	switch {
	case len(input.Items) == 0:
		details["items"] = "cart is empty"
	case len(input.Items) > maxCartLines:
		details["items"] = "too many lines"
	}
	if address == "" {
		details["shippingAddress"] = "required"
	}
	if phone == "" {
		details["phone"] = "required"
	}

	ids := make([]string, len(input.Items))
	for i, item := range input.Items {
		productID, ok := canonicalID(item.ProductID)
		if !ok {
			details[fmt.Sprintf("items[%d].productId", i)] = "invalid"
			continue
		}
		ids[i] = productID
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be between 1 and 99"
		}
		if utf8.RuneCountInString(strings.TrimSpace(item.Size)) > maxSizeLength {
			details[fmt.Sprintf("items[%d].size", i)] = "too long"
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid order", details)
	}

	products, err := s.products.GetSummaries(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	order := &domain.Order{
		UserID:          actor.SubjectID,
		Status:          domain.OrderStatusPending,
		ShippingAddress: address,
		Phone:           phone,
		Items:           make([]domain.OrderItem, 0, len(input.Items)),
	}
	var total float64
	for i, item := range input.Items {
		product, ok := products[ids[i]]
		if !ok {
			details[fmt.Sprintf("items[%d].productId", i)] = "unknown product"
			continue
		}
		summary := product
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: ids[i],
			Quantity:  item.Quantity,
			Size:      strings.TrimSpace(item.Size),
			Price:     product.Price,
			Product:   &summary,
		})
		total += product.Price * float64(item.Quantity)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid order", details)
	}
	order.Total = math.Round(total*100) / 100

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventOrderCreated,
		ResourceID: order.ID,
		Actor:      events.ActorOf(actor),
		Payload:    events.OrderCreatedPayload{Total: order.Total, ItemCount: len(order.Items)},
	})
	return order, nil
}

// Get returns an order the caller may see: its own, or any for admins.
func (s *OrderService) Get(ctx context.Context, actor domain.Identity, id string) (*domain.Order, error) {
	if actor.SubjectID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperrors.NewNotFound("order", nil)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("order", err)
	}
	if !actor.IsAdmin() && !order.OwnedBy(actor.SubjectID) {
		return nil, apperrors.NewForbidden("you do not have access to this order")
	}
	return order, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, actor domain.Identity) ([]domain.Order, error) {
	if actor.SubjectID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	orders, err := s.orders.ListByUser(ctx, actor.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orders, nil
}

// List returns all orders for admins.
func (s *OrderService) List(ctx context.Context, actor domain.Identity, q OrderQuery) (*OrderPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	filter := repository.OrderFilter{}
	if q.Status != "" {
		status := domain.OrderStatus(strings.ToUpper(q.Status))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": q.Status})
		}
		filter.Status = &status
	}
	page := q.Page.normalize()
	filter.Limit = page.Size
	filter.Offset = page.offset()

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Size,
		TotalPages: TotalPages(total, page.Size),
	}, nil
}

// UpdateStatus moves an order to a new status. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Identity, id, rawStatus string) (*domain.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status := domain.OrderStatus(rawStatus)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": rawStatus})
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, apperrors.NewNotFound("order", nil)
	}

	before, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("order", err)
	}
	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, notFoundOrInternal("order", err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventOrderStatusChanged,
		ResourceID: updated.ID,
		Actor:      events.ActorOf(actor),
		Payload:    events.OrderStatusChangedPayload{OldStatus: before.Status, NewStatus: updated.Status},
	})
	return updated, nil
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	publish(ctx, s.dispatcher, s.logger, e)
}
