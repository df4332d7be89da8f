package repository

import (
	"context"
	"errors"
	"time"

	"bistrobook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type BookingRepository interface {
	SlotTaken(ctx context.Context, q Querier, tableID int64, at time.Time) (bool, error)
	Create(ctx context.Context, q Querier, b *domain.Booking) error
	ByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Booking, error)
	CompletePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// SlotTaken reports whether a non-cancelled booking already holds the exact
// (table, booking_time) slot. It is the friendly pre-check; the partial
// unique index remains the arbiter under concurrency.
func (r *PGBookingRepository) SlotTaken(ctx context.Context, q Querier, tableID int64, at time.Time) (bool, error) {
	var taken bool
	err := q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE table_id = $1 AND booking_time = $2 AND status <> 'cancelled')`, tableID, at).Scan(&taken)
	return taken, err
}

func (r *PGBookingRepository) Create(ctx context.Context, q Querier, b *domain.Booking) error {
	b.Status = domain.StatusPending
	err := q.QueryRow(ctx, `INSERT INTO bookings (customer_id, table_id, booking_time, guests, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		b.CustomerID, b.TableID, b.BookingTime, b.Guests, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Conflictf("table %d is already booked at %s", b.TableID, b.BookingTime.Format(time.RFC3339))
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) ByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, customer_id, table_id, booking_time, guests, status, created_at, updated_at
		FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, customer_id, table_id, booking_time, guests, status, created_at, updated_at`, status, id)
	return scanBooking(row)
}

// CompletePendingBefore marks pending bookings whose time has passed the
// deadline as completed. Used by the worker sweep.
func (r *PGBookingRepository) CompletePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status = $1, updated_at = now()
		WHERE status = $2 AND booking_time <= $3
		RETURNING id, customer_id, table_id, booking_time, guests, status, created_at, updated_at`,
		domain.StatusCompleted, domain.StatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completed []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.TableID, &b.BookingTime, &b.Guests, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		completed = append(completed, b)
	}
	return completed, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.TableID, &b.BookingTime, &b.Guests, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("booking not found")
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
