package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gostack-labs/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository is an in-memory product.Repository.
type ProductRepository struct {
	mu   sync.RWMutex
	byID map[string]product.Product
}

// NewProductRepository returns an in-memory product repository pre-filled
// with the given products.
func NewProductRepository(products ...product.Product) *ProductRepository {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		byID[p.ID] = p
	}
	return &ProductRepository{byID: byID}
}

// Put inserts or replaces a product.
func (r *ProductRepository) Put(p product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.byID[p.ID] = p
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns a copy of the stored product or ErrNotFound.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products whose ids are known, ordered by ID. Unknown
// ids are skipped, so fewer products than ids may be returned.
func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DecrementStock applies all decrements atomically under one lock: either
// every product exists with sufficient stock and all quantities drop, or
// nothing changes. A missing product reports ErrNotFound, a short one an
// InsufficientStockError.
func (r *ProductRepository) DecrementStock(_ context.Context, decs []product.StockDecrement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range decs {
		p, ok := r.byID[d.ProductID]
		if !ok {
			return fmt.Errorf("product %q: %w", d.ProductID, product.ErrNotFound)
		}
		if p.Quantity < d.Quantity {
			return &product.InsufficientStockError{
				ProductID: d.ProductID,
				Requested: d.Quantity,
				Available: p.Quantity,
			}
		}
	}
	for _, d := range decs {
		p := r.byID[d.ProductID]
		p.Quantity -= d.Quantity
		r.byID[d.ProductID] = p
	}
	return nil
}
