package domain

import "time"

// Customer is owned by the restaurant. A customer may be linked to at most
// one user account; guests are identified by their unique email.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	UserID    *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
