package entity

import "time"

// Loan records one borrow of a book by a user. ReturnedAt is nil while the
// book is still out.
type Loan struct {
	ID         string     `json:"id"`
	ISBN       string     `json:"isbn"`
	UserID     string     `json:"user_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}
