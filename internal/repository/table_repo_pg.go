package repository

import (
	"context"
	"errors"

	"bistrobook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TableRepository interface {
	List(ctx context.Context, locale string) ([]domain.Table, error)
	ByID(ctx context.Context, id int64) (*domain.Table, error)
	Create(ctx context.Context, t *domain.Table, locale string) error
}

type PGTableRepository struct {
	db *pgxpool.Pool
}

func NewTableRepository(db *pgxpool.Pool) TableRepository {
	return &PGTableRepository{db: db}
}

func (r *PGTableRepository) List(ctx context.Context, locale string) ([]domain.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT t.id, t.table_number, t.seats, t.available,
			COALESCE(tt.location, ''), t.created_at, t.updated_at
		FROM tables AS t
		LEFT JOIN table_translations AS tt ON t.id = tt.table_id AND tt.locale = $1
		ORDER BY t.table_number`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]domain.Table, 0)
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Available, &t.Location, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *PGTableRepository) ByID(ctx context.Context, id int64) (*domain.Table, error) {
	row := r.db.QueryRow(ctx, `SELECT id, table_number, seats, available, '', created_at, updated_at
		FROM tables WHERE id = $1`, id)
	var t domain.Table
	if err := row.Scan(&t.ID, &t.TableNumber, &t.Seats, &t.Available, &t.Location, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("table not found")
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTableRepository) Create(ctx context.Context, t *domain.Table, locale string) error {
	err := r.db.QueryRow(ctx, `INSERT INTO tables (table_number, seats, available)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		t.TableNumber, t.Seats, t.Available).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Conflictf("table number %d already exists", t.TableNumber)
		}
		return err
	}
	if t.Location != "" {
		_, err = r.db.Exec(ctx, `INSERT INTO table_translations (table_id, locale, location)
			VALUES ($1, $2, $3)
			ON CONFLICT (table_id, locale) DO UPDATE SET location = EXCLUDED.location`,
			t.ID, locale, t.Location)
	}
	return err
}

var _ TableRepository = (*PGTableRepository)(nil)
