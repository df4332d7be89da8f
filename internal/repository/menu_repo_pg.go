package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bistrobook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Translation struct {
	Locale      string
	Name        string
	Description string
}

type MenuRepository interface {
	// PricesByIDs returns current prices for every requested id; duplicate
	// ids are fine. If any id is unknown it fails naming all missing ids.
	PricesByIDs(ctx context.Context, q Querier, ids []int64) (map[int64]decimal.Decimal, error)

	Menu(ctx context.Context, locale string) ([]domain.MenuCategory, error)

	CreateCategory(ctx context.Context, q Querier, tr Translation) (*domain.MenuCategory, error)
	UpsertCategoryTranslation(ctx context.Context, q Querier, categoryID int64, tr Translation) (*domain.MenuCategory, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, q Querier, item *domain.MenuItem, tr Translation) error
	UpdateItem(ctx context.Context, q Querier, item *domain.MenuItem, tr Translation) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

type PGMenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) MenuRepository {
	return &PGMenuRepository{db: db}
}

func (r *PGMenuRepository) PricesByIDs(ctx context.Context, q Querier, ids []int64) (map[int64]decimal.Decimal, error) {
	distinct := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	rows, err := q.Query(ctx, `SELECT id, price FROM menu_items WHERE id = ANY($1)`, distinct)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal, len(distinct))
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(prices) != len(distinct) {
		var missing []int64
		for _, id := range distinct {
			if _, ok := prices[id]; !ok {
				missing = append(missing, id)
			}
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		parts := make([]string, len(missing))
		for i, id := range missing {
			parts[i] = fmt.Sprintf("%d", id)
		}
		return nil, domain.NotFoundf("menu items not found: %s", strings.Join(parts, ", "))
	}
	return prices, nil
}

// Menu returns all categories with their items, using the translations for
// the requested locale where present.
func (r *PGMenuRepository) Menu(ctx context.Context, locale string) ([]domain.MenuCategory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			c.id,
			COALESCE(ct.name, 'Unnamed'),
			COALESCE(ct.description, ''),
			i.id, i.price, i.available,
			COALESCE(it.name, 'Unnamed'),
			COALESCE(it.description, '')
		FROM menu_categories AS c
		LEFT JOIN menu_category_translations AS ct ON c.id = ct.category_id AND ct.locale = $1
		LEFT JOIN menu_items AS i ON c.id = i.category_id
		LEFT JOIN menu_item_translations AS it ON i.id = it.item_id AND it.locale = $1
		ORDER BY c.id, i.id`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.MenuCategory, 0)
	index := map[int64]int{}
	for rows.Next() {
		var (
			cat      domain.MenuCategory
			itemID   *int64
			price    *decimal.Decimal
			avail    *bool
			itemName *string
			itemDesc *string
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &itemID, &price, &avail, &itemName, &itemDesc); err != nil {
			return nil, err
		}
		pos, ok := index[cat.ID]
		if !ok {
			cat.Items = []domain.MenuItem{}
			categories = append(categories, cat)
			pos = len(categories) - 1
			index[cat.ID] = pos
		}
		if itemID != nil {
			categories[pos].Items = append(categories[pos].Items, domain.MenuItem{
				ID:          *itemID,
				CategoryID:  cat.ID,
				Price:       *price,
				Available:   *avail,
				Name:        *itemName,
				Description: *itemDesc,
			})
		}
	}
	return categories, rows.Err()
}

func (r *PGMenuRepository) CreateCategory(ctx context.Context, q Querier, tr Translation) (*domain.MenuCategory, error) {
	var cat domain.MenuCategory
	err := q.QueryRow(ctx, `INSERT INTO menu_categories DEFAULT VALUES
		RETURNING id, created_at, updated_at`).
		Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_, err = q.Exec(ctx, `INSERT INTO menu_category_translations (category_id, locale, name, description)
		VALUES ($1, $2, $3, $4)`, cat.ID, tr.Locale, tr.Name, tr.Description)
	if err != nil {
		return nil, err
	}
	cat.Name = tr.Name
	cat.Description = tr.Description
	return &cat, nil
}

func (r *PGMenuRepository) UpsertCategoryTranslation(ctx context.Context, q Querier, categoryID int64, tr Translation) (*domain.MenuCategory, error) {
	var cat domain.MenuCategory
	err := q.QueryRow(ctx, `SELECT id, created_at, updated_at FROM menu_categories WHERE id = $1`, categoryID).
		Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("menu category not found")
		}
		return nil, err
	}
	err = q.QueryRow(ctx, `INSERT INTO menu_category_translations (category_id, locale, name, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (category_id, locale) DO UPDATE
			SET name = EXCLUDED.name, description = EXCLUDED.description
		RETURNING name, description`, categoryID, tr.Locale, tr.Name, tr.Description).
		Scan(&cat.Name, &cat.Description)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *PGMenuRepository) DeleteCategory(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM menu_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("menu category not found")
	}
	return nil
}

func (r *PGMenuRepository) CreateItem(ctx context.Context, q Querier, item *domain.MenuItem, tr Translation) error {
	err := q.QueryRow(ctx, `INSERT INTO menu_items (category_id, price, available)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		item.CategoryID, item.Price, item.Available).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO menu_item_translations (item_id, locale, name, description)
		VALUES ($1, $2, $3, $4)`, item.ID, tr.Locale, tr.Name, tr.Description)
	if err != nil {
		return err
	}
	item.Name = tr.Name
	item.Description = tr.Description
	return nil
}

func (r *PGMenuRepository) UpdateItem(ctx context.Context, q Querier, item *domain.MenuItem, tr Translation) (*domain.MenuItem, error) {
	updated := *item
	err := q.QueryRow(ctx, `UPDATE menu_items
		SET category_id = COALESCE(NULLIF($1, 0), category_id),
		    price = $2,
		    available = $3,
		    updated_at = now()
		WHERE id = $4
		RETURNING id, category_id, price, available, created_at, updated_at`,
		item.CategoryID, item.Price, item.Available, item.ID).
		Scan(&updated.ID, &updated.CategoryID, &updated.Price, &updated.Available, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("menu item not found")
		}
		return nil, err
	}
	err = q.QueryRow(ctx, `INSERT INTO menu_item_translations (item_id, locale, name, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, locale) DO UPDATE
			SET name = EXCLUDED.name, description = EXCLUDED.description
		RETURNING name, description`, item.ID, tr.Locale, tr.Name, tr.Description).
		Scan(&updated.Name, &updated.Description)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *PGMenuRepository) DeleteItem(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("menu item not found")
	}
	return nil
}

var _ MenuRepository = (*PGMenuRepository)(nil)
