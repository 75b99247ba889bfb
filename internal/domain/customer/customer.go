package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrEmailTaken is returned when registering a customer with an email that
// already belongs to another customer.
var ErrEmailTaken = errors.New("email already registered")

// Customer represents a registered buyer. Orders reference customers; this
// service never deletes them.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
}
