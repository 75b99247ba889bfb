package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gostack-labs/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, quantity, created_at
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, quantity, created_at
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, price, quantity, created_at
		FROM products WHERE id = ANY($1) ORDER BY id`

	// Conditional decrement: no row is updated when stock is insufficient,
	// so quantity can never go negative even under concurrent orders.
	decrementStockSQL = `UPDATE products SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2`

	getProductQuantitySQL = `SELECT quantity FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// DecrementStock applies all decrements in a single transaction using a
// batched conditional update. If any product lacks sufficient stock the whole
// transaction is rolled back and an InsufficientStockError carrying the
// current quantity is returned; a missing product reports ErrNotFound.
func (r *ProductRepository) DecrementStock(ctx context.Context, decs []product.StockDecrement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decrement: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range decs {
		batch.Queue(decrementStockSQL, d.ProductID, d.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	for _, d := range decs {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("decrementing stock for %q: %w", d.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return r.classifyFailedDecrement(ctx, tx, d)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing decrement batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit decrement: %w", err)
	}
	return nil
}

// classifyFailedDecrement distinguishes why a conditional decrement updated
// no row: the product is either missing or short on stock. The read runs on
// the same transaction, so it sees the row state the update saw.
func (r *ProductRepository) classifyFailedDecrement(ctx context.Context, tx pgx.Tx, d product.StockDecrement) error {
	var available int
	err := tx.QueryRow(ctx, getProductQuantitySQL, d.ProductID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product %q: %w", d.ProductID, product.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking stock for %q: %w", d.ProductID, err)
	}
	return &product.InsufficientStockError{
		ProductID: d.ProductID,
		Requested: d.Quantity,
		Available: available,
	}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.CreatedAt)
	p.Price = price
	return p, err
}
