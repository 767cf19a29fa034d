package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/food-ordering/internal/domain/menu"
	"github.com/xenking/food-ordering/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, total_amount, discount_amount, final_amount, discount_code, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	setUserDiscountSQL = `UPDATE users SET discount_type = $2 WHERE id = $1`

	// The cursor compares (created_at, id) so orders sharing a timestamp
	// still page deterministically. LIMIT NULL means no limit.
	listOrdersSQL = `SELECT o.id, o.user_id, o.total_amount, o.discount_amount, o.final_amount,
			o.discount_code, o.payment_method, o.created_at
		FROM orders o
		WHERE o.user_id = $1
		  AND ($2::bigint = 0 OR (o.created_at, o.id) <
			(SELECT b.created_at, b.id FROM orders b WHERE b.id = $2 AND b.user_id = $1))
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT NULLIF($3::int, 0)`

	listOrderItemsSQL = `SELECT id, order_id, menu_item_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Tx         = (*orderTx)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// InTx runs fn in a read-committed transaction.
func (r *OrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, &orderTx{q: tx})
	})
}

// ListByUser reads order headers and their lines from a single snapshot.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, page order.Page) ([]order.Order, error) {
	var orders []order.Order
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		var err error
		orders, err = listOrders(ctx, tx, userID, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func listOrders(ctx context.Context, q querier, userID int64, page order.Page) ([]order.Order, error) {
	rows, err := q.Query(ctx, listOrdersSQL, userID, page.BeforeID, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err = q.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	type itemRow struct {
		orderID int64
		line    order.Line
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (itemRow, error) {
		var it itemRow
		err := row.Scan(&it.line.ID, &it.orderID, &it.line.MenuItemID, &it.line.Name, &it.line.Quantity, &it.line.UnitPrice)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}

	for _, it := range items {
		i := index[it.orderID]
		orders[i].Lines = append(orders[i].Lines, it.line)
	}
	for i := range orders {
		if orders[i].Lines == nil {
			orders[i].Lines = []order.Line{}
		}
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.Discount, &o.Final,
		&o.DiscountCode, &o.PaymentMethod, &o.CreatedAt,
	)
	return o, err
}

// orderTx implements order.Tx on top of a pgx transaction.
type orderTx struct {
	q querier
}

func (t *orderTx) GetPrice(ctx context.Context, id int64) (*menu.Price, error) {
	return getPrice(ctx, t.q, lockPriceSQL, id)
}

func (t *orderTx) GetPrices(ctx context.Context, ids []int64) ([]menu.Price, error) {
	return queryPrices(ctx, t.q, lockPricesSQL, ids)
}

func (t *orderTx) Insert(ctx context.Context, o *order.Order) error {
	err := t.q.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.Subtotal, o.Discount, o.Final, o.DiscountCode, o.PaymentMethod,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(insertOrderItemSQL, o.ID, l.MenuItemID, l.Name, l.Quantity, l.UnitPrice)
	}
	br := t.q.SendBatch(ctx, batch)
	for i := range o.Lines {
		if err := br.QueryRow().Scan(&o.Lines[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("inserting order line %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("inserting order lines: %w", err)
	}
	return nil
}

func (t *orderTx) SetUserDiscount(ctx context.Context, userID int64, code string) error {
	tag, err := t.q.Exec(ctx, setUserDiscountSQL, userID, code)
	if err != nil {
		return fmt.Errorf("updating discount for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating discount for user %d: no such user", userID)
	}
	return nil
}
