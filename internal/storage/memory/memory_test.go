package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostack-labs/storefront/internal/domain/customer"
	"github.com/gostack-labs/storefront/internal/domain/order"
	"github.com/gostack-labs/storefront/internal/domain/product"
)

func testProduct(id string, price string, quantity int) product.Product {
	return product.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

func TestCustomerRepository(t *testing.T) {
	repo := NewCustomerRepository()
	ctx := context.Background()

	c := &customer.Customer{ID: "c1", Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, repo.Create(ctx, c))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, customer.ErrNotFound)

	dup := &customer.Customer{ID: "c2", Name: "Eve", Email: "ada@example.com"}
	require.ErrorIs(t, repo.Create(ctx, dup), customer.ErrEmailTaken)
}

func TestProductRepository_Lookups(t *testing.T) {
	repo := NewProductRepository(
		testProduct("p2", "4.50", 8),
		testProduct("p1", "10.00", 5),
	)
	ctx := context.Background()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "p2", all[1].ID)

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)

	_, err = repo.GetByID(ctx, "p9")
	require.ErrorIs(t, err, product.ErrNotFound)

	// Unknown ids are skipped, duplicates collapse.
	batch, err := repo.GetByIDs(ctx, []string{"p1", "p9", "p1"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "p1", batch[0].ID)
}

func TestProductRepository_Put(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	repo.Put(testProduct("p1", "10.00", 5))

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())

	// Put with an existing id replaces the stored product.
	repo.Put(testProduct("p1", "12.00", 7))

	p, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(p.Price))
	assert.Equal(t, 7, p.Quantity)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	repo := NewProductRepository(
		testProduct("p1", "10.00", 5),
		testProduct("p2", "4.50", 1),
	)
	ctx := context.Background()

	err := repo.DecrementStock(ctx, []product.StockDecrement{
		{ProductID: "p1", Quantity: 3},
	})
	require.NoError(t, err)

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
}

func TestProductRepository_DecrementStock_Insufficient(t *testing.T) {
	repo := NewProductRepository(
		testProduct("p1", "10.00", 5),
		testProduct("p2", "4.50", 1),
	)
	ctx := context.Background()

	// One sufficient, one insufficient: nothing must change.
	err := repo.DecrementStock(ctx, []product.StockDecrement{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 2},
	})

	var isErr *product.InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "p2", isErr.ProductID)

	p1, _ := repo.GetByID(ctx, "p1")
	p2, _ := repo.GetByID(ctx, "p2")
	assert.Equal(t, 5, p1.Quantity)
	assert.Equal(t, 1, p2.Quantity)
}

func TestProductRepository_DecrementStock_UnknownProduct(t *testing.T) {
	repo := NewProductRepository(testProduct("p1", "10.00", 5))
	ctx := context.Background()

	err := repo.DecrementStock(ctx, []product.StockDecrement{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p9", Quantity: 1},
	})

	// Missing rows are not a stock problem.
	require.ErrorIs(t, err, product.ErrNotFound)
	var isErr *product.InsufficientStockError
	assert.False(t, errors.As(err, &isErr))

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
}

func TestOrderRepository(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	o := &order.Order{
		ID:       "o1",
		Customer: customer.Customer{ID: "c1", Name: "Ada"},
		Items: []order.OrderItem{
			{ProductID: "p1", Price: decimal.RequireFromString("10.00"), Quantity: 3},
		},
		Total: decimal.RequireFromString("30.00"),
	}
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.Customer.ID)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Items[0].Price))

	// Mutating the returned copy must not affect the store.
	got.Items[0].Quantity = 99
	again, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Items[0].Quantity)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}
