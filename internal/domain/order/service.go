package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gostack-labs/storefront/internal/domain/customer"
	"github.com/gostack-labs/storefront/internal/domain/product"
)

// ErrEmptyItems is returned when an order request contains no products.
var ErrEmptyItems = fmt.Errorf("products required")

// CustomerNotFoundError indicates the requested customer does not exist.
type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s does not exist", e.CustomerID)
}

// InvalidProductIDError indicates at least one requested product id does not
// exist: the batch lookup returned fewer products than were requested. It
// does not pinpoint which id is invalid.
type InvalidProductIDError struct {
	Requested int
	Found     int
}

func (e *InvalidProductIDError) Error() string {
	return fmt.Sprintf("invalid product id: requested %d products, found %d", e.Requested, e.Found)
}

// ProductNotFoundError indicates a product returned by the batch lookup has
// no matching entry in the request. Given the count check this should not
// occur; it guards against inconsistent repository behavior.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found in request", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductRequest is a single requested product line: which product and how
// many units.
type ProductRequest struct {
	ID       string
	Quantity int
}

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	CustomerID string
	Products   []ProductRequest
}

// Service encapsulates order creation business logic. All I/O is delegated
// to the injected repositories.
type Service struct {
	customers customer.Repository
	products  product.Repository
	orders    Repository
}

// NewService creates an order Service with the required collaborators.
func NewService(
	customers customer.Repository,
	products product.Repository,
	orders Repository,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// CreateOrder validates the customer and the requested products against live
// stock, persists the order with per-item price snapshots, and decrements
// stock for every requested product.
//
// The stock decrement runs after the order is persisted and is not rolled
// back if it fails, leaving the order created and stock untouched. Callers
// that need stronger guarantees must reconcile out of band.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Products) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs.
	ids := make([]string, len(req.Products))
	for i, p := range req.Products {
		if p.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: p.ID}
		}
		ids[i] = p.ID
	}

	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, &CustomerNotFoundError{CustomerID: req.CustomerID}
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	// Existence check by count: fewer products returned than requested means
	// at least one id is unknown. Duplicate requested ids that map to the
	// same product fail this check as well.
	if len(fetched) < len(req.Products) {
		return nil, &InvalidProductIDError{Requested: len(req.Products), Found: len(fetched)}
	}

	requested := make(map[string]ProductRequest, len(req.Products))
	for _, p := range req.Products {
		if _, ok := requested[p.ID]; !ok {
			requested[p.ID] = p
		}
	}

	// Check stock and snapshot prices. Items follow the order the repository
	// returned the products in.
	items := make([]OrderItem, 0, len(fetched))
	total := decimal.Zero
	for _, p := range fetched {
		want, ok := requested[p.ID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: p.ID}
		}
		if want.Quantity > p.Quantity {
			return nil, &product.InsufficientStockError{
				ProductID: p.ID,
				Requested: want.Quantity,
				Available: p.Quantity,
			}
		}

		items = append(items, OrderItem{
			ProductID: p.ID,
			Price:     p.Price,
			Quantity:  want.Quantity,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(want.Quantity))))
	}

	o := &Order{
		ID:       uuid.New().String(),
		Customer: *cust,
		Items:    items,
		Total:    total.Round(2),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	decs := make([]product.StockDecrement, len(req.Products))
	for i, p := range req.Products {
		decs[i] = product.StockDecrement{ProductID: p.ID, Quantity: p.Quantity}
	}
	if err := s.products.DecrementStock(ctx, decs); err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	return o, nil
}

// GetOrder fetches a previously created order by id.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}
