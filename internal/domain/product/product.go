package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Quantity is the
// remaining sellable stock.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// StockDecrement describes a stock reduction for a single product.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// InsufficientStockError indicates a requested quantity exceeds the
// available stock for a product.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Repository defines read and stock-mutation operations for the product
// catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns products matching any of the given IDs in a single
	// batch. It may return fewer products than requested ids.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// DecrementStock reduces the available quantity for every listed product.
	// Implementations must refuse to drive a quantity below zero.
	DecrementStock(ctx context.Context, decs []StockDecrement) error
}
