package repofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/repository"
)

var _ repository.OrderRepository = (*FakeOrderRepo)(nil)

// FakeOrderRepo keeps orders in memory. Products resolves item summaries on read.
type FakeOrderRepo struct {
	lock     sync.RWMutex
	orders   map[string]*domain.Order
	Products *FakeProductRepo
	Err      error
}

func NewFakeOrderRepo(products *FakeProductRepo) *FakeOrderRepo {
	return &FakeOrderRepo{orders: make(map[string]*domain.Order), Products: products}
}

func (r *FakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *FakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	order, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.withProducts(order), nil
}

func (r *FakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *FakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}
	matched := r.filter(func(o *domain.Order) bool {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			return false
		}
		return filter.Status == nil || o.Status == *filter.Status
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *FakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	order, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return r.withProducts(order), nil
}

// Put stores an order as-is, for fixtures.
func (r *FakeOrderRepo) Put(order domain.Order) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.orders[order.ID] = cloneOrder(&order)
}

func (r *FakeOrderRepo) filter(keep func(*domain.Order) bool) []domain.Order {
	result := []domain.Order{}
	for _, order := range r.orders {
		if keep(order) {
			result = append(result, *r.withProducts(order))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *FakeOrderRepo) withProducts(order *domain.Order) *domain.Order {
	cp := cloneOrder(order)
	if r.Products == nil {
		return cp
	}
	for i := range cp.Items {
		if p, ok := r.Products.get(cp.Items[i].ProductID); ok {
			cp.Items[i].Product = &p
		}
	}
	return cp
}

func cloneOrder(order *domain.Order) *domain.Order {
	cp := *order
	cp.Items = append([]domain.OrderItem{}, order.Items...)
	return &cp
}
