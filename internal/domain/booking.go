package domain

import "time"

// Booking reserves one table for one customer at an exact point in time.
// At most one non-cancelled booking may exist per (table, booking_time);
// the storage layer enforces this with a partial unique index.
type Booking struct {
	ID          int64
	CustomerID  int64
	TableID     int64
	BookingTime time.Time
	Guests      int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
