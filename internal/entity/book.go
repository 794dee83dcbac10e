package entity

import "time"

type Book struct {
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Borrowed  bool      `json:"borrowed"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Borrow marks the book as lent out.
func (b *Book) Borrow() {
	b.Borrowed = true
}

// Return marks the book as back on the shelf.
func (b *Book) Return() {
	b.Borrowed = false
}
