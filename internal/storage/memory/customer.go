// Package memory implements the domain repositories with mutex-guarded maps.
// It backs the "memory" storage driver for local development and is used as
// a lightweight double in handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gostack-labs/storefront/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository is an in-memory customer.Repository.
type CustomerRepository struct {
	mu      sync.RWMutex
	byID    map[string]customer.Customer
	byEmail map[string]string
}

// NewCustomerRepository returns an empty in-memory customer repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		byID:    make(map[string]customer.Customer),
		byEmail: make(map[string]string),
	}
}

// Create stores a new customer, enforcing email uniqueness.
func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[c.Email]; taken {
		return customer.ErrEmailTaken
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	r.byID[c.ID] = *c
	r.byEmail[c.Email] = c.ID
	return nil
}

// GetByID returns a copy of the stored customer or ErrNotFound.
func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}
