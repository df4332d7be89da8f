package repository

import (
	"context"
	"errors"

	"bistrobook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderFilter struct {
	CustomerID *int64
	Status     *domain.Status
}

type OrderRepository interface {
	CreateHeader(ctx context.Context, q Querier, o *domain.Order) error
	InsertLines(ctx context.Context, q Querier, lines []domain.OrderLine) error
	ByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

func (r *PGOrderRepository) CreateHeader(ctx context.Context, q Querier, o *domain.Order) error {
	o.Status = domain.StatusPending
	return q.QueryRow(ctx, `INSERT INTO orders (customer_id, booking_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		o.CustomerID, o.BookingID, o.Status).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// InsertLines writes all lines of one order as a single batch; no per-row
// round trips.
func (r *PGOrderRepository) InsertLines(ctx context.Context, q Querier, lines []domain.OrderLine) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`INSERT INTO order_lines (order_id, menu_item_id, quantity, price_at_order)
			VALUES ($1, $2, $3, $4)`,
			l.OrderID, l.MenuItemID, l.Quantity, l.PriceAtOrder)
	}
	return q.SendBatch(ctx, batch).Close()
}

func (r *PGOrderRepository) ByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT id, customer_id, booking_id, status, created_at, updated_at
		FROM orders WHERE id = $1`, id)
	var o domain.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.BookingID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("order not found")
		}
		return nil, err
	}
	lines, err := r.linesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *PGOrderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	query := `SELECT id, customer_id, booking_id, status, created_at, updated_at FROM orders`
	args := []any{}
	where := ""
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = ` WHERE customer_id = $1`
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		if where == "" {
			where = ` WHERE status = $1`
		} else {
			where += ` AND status = $2`
		}
	}
	rows, err := r.db.Query(ctx, query+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.BookingID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.linesFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *PGOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `UPDATE orders SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, customer_id, booking_id, status, created_at, updated_at`, status, id)
	var o domain.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.BookingID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("order not found")
		}
		return nil, err
	}
	return &o, nil
}

// Delete removes the order; lines go with it via ON DELETE CASCADE.
func (r *PGOrderRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("order not found")
	}
	return nil
}

func (r *PGOrderRepository) linesFor(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, menu_item_id, quantity, price_at_order
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.Quantity, &l.PriceAtOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)
