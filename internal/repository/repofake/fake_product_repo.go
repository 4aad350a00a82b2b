package repofake

import (
	"context"
	"sync"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/repository"
)

var _ repository.ProductRepository = (*FakeProductRepo)(nil)

type FakeProductRepo struct {
	lock     sync.RWMutex
	products map[string]domain.ProductSummary
}

func NewFakeProductRepo(products ...domain.ProductSummary) *FakeProductRepo {
	r := &FakeProductRepo{products: make(map[string]domain.ProductSummary)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *FakeProductRepo) GetSummaries(_ context.Context, ids []string) (map[string]domain.ProductSummary, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	result := make(map[string]domain.ProductSummary, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (r *FakeProductRepo) get(id string) (domain.ProductSummary, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	p, ok := r.products[id]
	return p, ok
}
