package repository

import (
	"context"
	"errors"

	"bistrobook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository interface {
	UpsertGuest(ctx context.Context, q Querier, c *domain.Customer) (int64, error)
	ByUserID(ctx context.Context, q Querier, userID int64) (*domain.Customer, error)
}

type PGCustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

// UpsertGuest creates or refreshes a guest customer keyed by email in a
// single atomic statement. The latest submitted contact details win; the
// existing id is kept.
func (r *PGCustomerRepository) UpsertGuest(ctx context.Context, q Querier, c *domain.Customer) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `INSERT INTO customers (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
			SET first_name = EXCLUDED.first_name,
			    last_name = EXCLUDED.last_name,
			    phone = EXCLUDED.phone,
			    updated_at = now()
		RETURNING id`, c.FirstName, c.LastName, c.Email, c.Phone).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

func (r *PGCustomerRepository) ByUserID(ctx context.Context, q Querier, userID int64) (*domain.Customer, error) {
	row := q.QueryRow(ctx, `SELECT id, first_name, last_name, email, phone, user_id, created_at, updated_at
		FROM customers WHERE user_id = $1`, userID)
	return scanCustomer(row)
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("customer not found")
		}
		return nil, err
	}
	return &c, nil
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)
