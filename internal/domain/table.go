package domain

import "time"

// Table is a physical seating unit. Location carries the translation for one
// requested locale.
type Table struct {
	ID          int64
	TableNumber int
	Seats       int
	Available   bool
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
