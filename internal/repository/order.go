package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/checkout"
	"github.com/dokanhq/dokan-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, user_name, user_phone, user_address, items,
		subtotal, delivery_charge, coupon_discount, coupon_code, cod_fee,
		grand_total, payment_method, transaction_id, status, created_at`

	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	lockProductStockSQL = `SELECT stock, variants FROM products WHERE id = $1 FOR UPDATE`

	updateProductStockSQL = `UPDATE products SET stock = $2, variants = $3 WHERE id = $1`
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ checkout.TxStore = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and the checkout engine's
// transactional store backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// PlaceOrder inserts the order and applies every stock deduction in a single
// transaction. Affected product rows are locked FOR UPDATE so the read-apply-
// write of variant stocks cannot interleave with a concurrent checkout, and a
// failed deduction rolls the order back. Deductions referencing a missing
// product are skipped so an order can still complete after a product is
// removed from the catalog mid-checkout.
func (r *OrderRepository) PlaceOrder(ctx context.Context, o *order.Order, deductions []catalog.StockDeduction) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning placement transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.UserName, o.UserPhone, o.UserAddress, itemsJSON,
		o.Subtotal, o.DeliveryCharge, o.CouponDiscount, o.CouponCode, o.CODFee,
		o.GrandTotal, o.PaymentMethod, o.TransactionID, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, d := range deductions {
		if err := applyDeduction(ctx, tx, d); err != nil {
			return fmt.Errorf("adjusting stock for product %q: %w", d.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

func applyDeduction(ctx context.Context, tx pgx.Tx, d catalog.StockDeduction) error {
	var (
		stock        int
		variantsJSON []byte
	)
	err := tx.QueryRow(ctx, lockProductStockSQL, d.ProductID).Scan(&stock, &variantsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	p := catalog.Product{ID: d.ProductID, Stock: stock}
	if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
		return fmt.Errorf("decoding variants: %w", err)
	}

	catalog.ApplyDeduction(&p, d)

	updated, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("encoding variants: %w", err)
	}

	_, err = tx.Exec(ctx, updateProductStockSQL, d.ProductID, p.Stock, updated)
	return err
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return orders, nil
}

// GetByID returns a single order, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus transitions an order to the given status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	if !status.Valid() {
		return nil, order.ErrInvalidStatus
	}

	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return nil, fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.UserPhone, &o.UserAddress, &itemsJSON,
		&o.Subtotal, &o.DeliveryCharge, &o.CouponDiscount, &o.CouponCode, &o.CODFee,
		&o.GrandTotal, &o.PaymentMethod, &o.TransactionID, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decoding order items: %w", err)
	}
	return o, nil
}
