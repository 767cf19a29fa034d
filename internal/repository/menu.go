package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/food-ordering/internal/domain/menu"
)

const (
	menuItemColumns = `m.id, m.name, m.description, m.price, m.image_url, m.is_available,
		COALESCE(m.category_id, 0), COALESCE(c.name, ''), COALESCE(c.description, '')`

	listAvailableSQL = `SELECT ` + menuItemColumns + `
		FROM menu_items m LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.is_available
		ORDER BY c.name NULLS LAST, m.name`

	listByCategorySQL = `SELECT ` + menuItemColumns + `
		FROM menu_items m LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.is_available AND m.category_id = $1
		ORDER BY m.name`

	getMenuItemSQL = `SELECT ` + menuItemColumns + `
		FROM menu_items m LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1`

	listCategoriesSQL = `SELECT id, name, description FROM categories ORDER BY name`

	getPriceSQL = `SELECT id, name, price, is_available FROM menu_items WHERE id = $1`

	getPricesSQL = `SELECT id, name, price, is_available FROM menu_items WHERE id = ANY($1)`

	// The lock variants hold a share lock on the referenced rows until the
	// surrounding transaction ends; catalog updates wait for it.
	lockPriceSQL  = getPriceSQL + ` FOR SHARE`
	lockPricesSQL = getPricesSQL + ` ORDER BY id FOR SHARE`
)

var (
	_ menu.Repository  = (*MenuRepository)(nil)
	_ menu.PriceReader = (*MenuRepository)(nil)
)

// MenuRepository implements menu.Repository and menu.PriceReader backed by
// PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// ListAvailable returns every available item ordered by category and name.
func (r *MenuRepository) ListAvailable(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listAvailableSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// ListByCategory returns the available items of one category.
func (r *MenuRepository) ListByCategory(ctx context.Context, categoryID int64) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listByCategorySQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing category %d: %w", categoryID, err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// Categories returns all categories ordered by name.
func (r *MenuRepository) Categories(ctx context.Context) ([]menu.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (menu.Category, error) {
		var c menu.Category
		err := row.Scan(&c.ID, &c.Name, &c.Description)
		return c, err
	})
}

// GetByID returns a single item regardless of availability.
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %d: %w", id, err)
	}
	return &item, nil
}

// GetPrice returns the current price of a single item.
func (r *MenuRepository) GetPrice(ctx context.Context, id int64) (*menu.Price, error) {
	return getPrice(ctx, r.pool, getPriceSQL, id)
}

func getPrice(ctx context.Context, q querier, sql string, id int64) (*menu.Price, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("getting price %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting price %d: %w", id, err)
	}
	return &p, nil
}

// GetPrices returns the current prices of the given items. Unknown ids are
// omitted from the result.
func (r *MenuRepository) GetPrices(ctx context.Context, ids []int64) ([]menu.Price, error) {
	return queryPrices(ctx, r.pool, getPricesSQL, ids)
}

func queryPrices(ctx context.Context, q querier, sql string, ids []int64) ([]menu.Price, error) {
	rows, err := q.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("getting prices: %w", err)
	}
	return pgx.CollectRows(rows, scanPrice)
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var it menu.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Price, &it.ImageURL, &it.Available,
		&it.CategoryID, &it.CategoryName, &it.CategoryDescription,
	)
	return it, err
}

func scanPrice(row pgx.CollectableRow) (menu.Price, error) {
	var p menu.Price
	err := row.Scan(&p.MenuItemID, &p.Name, &p.Amount, &p.Available)
	return p, err
}
