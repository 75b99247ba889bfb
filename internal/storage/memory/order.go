package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gostack-labs/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order.Repository.
type OrderRepository struct {
	mu   sync.RWMutex
	byID map[string]order.Order
}

// NewOrderRepository returns an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[string]order.Order)}
}

// Create stores a new order.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	// Store a copy so later caller mutations do not leak into the store.
	stored := *o
	stored.Items = append([]order.OrderItem(nil), o.Items...)
	r.byID[o.ID] = stored
	return nil
}

// GetByID returns a copy of the stored order or ErrNotFound.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Items = append([]order.OrderItem(nil), o.Items...)
	return &o, nil
}
