package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gs-sport/storefront/internal/domain"
)

// ProductRepository reads the product fields orders depend on.
type ProductRepository interface {
	GetSummaries(ctx context.Context, ids []string) (map[string]domain.ProductSummary, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) GetSummaries(ctx context.Context, ids []string) (map[string]domain.ProductSummary, error) {
	result := make(map[string]domain.ProductSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `
        SELECT id, name, image, price
        FROM products WHERE id = ANY($1::uuid[])`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ProductSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Price); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}
