package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	name string
	sql  string
}

// Ordered; never reorder or edit an applied migration, append a new one.
var migrations = []migration{
	{name: "001_users", sql: `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'staff',
			archived_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{name: "002_customers", sql: `
		CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL,
			user_id BIGINT UNIQUE REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
	{name: "003_tables", sql: `
		CREATE TABLE IF NOT EXISTS tables (
			id BIGSERIAL PRIMARY KEY,
			table_number INT NOT NULL UNIQUE,
			seats INT NOT NULL,
			available BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS table_translations (
			id BIGSERIAL PRIMARY KEY,
			table_id BIGINT NOT NULL REFERENCES tables(id) ON DELETE CASCADE,
			locale TEXT NOT NULL,
			location TEXT NOT NULL,
			UNIQUE (table_id, locale)
		)`},
	{name: "004_bookings", sql: `
		CREATE TABLE IF NOT EXISTS bookings (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			table_id BIGINT NOT NULL REFERENCES tables(id),
			booking_time TIMESTAMPTZ NOT NULL,
			guests INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		-- The slot invariant: one active booking per (table, exact time).
		-- Equality on booking_time, not an overlap check.
		CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_slot
			ON bookings (table_id, booking_time)
			WHERE status <> 'cancelled'`},
	{name: "005_menu", sql: `
		CREATE TABLE IF NOT EXISTS menu_categories (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS menu_category_translations (
			id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES menu_categories(id) ON DELETE CASCADE,
			locale TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			UNIQUE (category_id, locale)
		);
		CREATE TABLE IF NOT EXISTS menu_items (
			id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES menu_categories(id) ON DELETE CASCADE,
			price NUMERIC(10,2) NOT NULL,
			available BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS menu_item_translations (
			id BIGSERIAL PRIMARY KEY,
			item_id BIGINT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
			locale TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			UNIQUE (item_id, locale)
		)`},
	{name: "006_orders", sql: `
		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			booking_id BIGINT REFERENCES bookings(id),
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS order_lines (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_item_id BIGINT NOT NULL REFERENCES menu_items(id),
			quantity INT NOT NULL CHECK (quantity > 0),
			price_at_order NUMERIC(10,2) NOT NULL
		)`},
}

// Migrate applies pending migrations, tracking them in schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := pool.Query(ctx, `SELECT migration_name FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := pool.Exec(ctx, `INSERT INTO schema_migrations (migration_name) VALUES ($1)`, m.name); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}
	return nil
}
