package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"library/internal/entity"
	"library/internal/library"
)

// Memory is an in-process DatabaseService. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	books map[string]entity.Book
	users map[string]entity.User
	loans []entity.Loan
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		books: make(map[string]entity.Book),
		users: make(map[string]entity.User),
		now:   time.Now,
	}
}

func (m *Memory) GetBookByISBN(_ context.Context, isbn string) (entity.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[isbn]
	if !ok {
		return entity.Book{}, library.ErrRecordNotFound
	}
	return b, nil
}

func (m *Memory) AddBook(_ context.Context, isbn string, book entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[isbn]; ok {
		return fmt.Errorf("add %s: %w", isbn, library.ErrRecordExists)
	}

	now := m.now()
	book.ISBN = isbn
	book.CreatedAt = now
	book.UpdatedAt = now
	m.books[isbn] = book
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, userID string) (entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return entity.User{}, library.ErrRecordNotFound
	}
	return u, nil
}

func (m *Memory) RegisterUser(_ context.Context, userID string, user entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; ok {
		return fmt.Errorf("register %s: %w", userID, library.ErrRecordExists)
	}

	user.ID = userID
	user.CreatedAt = m.now()
	m.users[userID] = user
	return nil
}

func (m *Memory) BorrowBook(_ context.Context, isbn, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[isbn]
	if !ok {
		return fmt.Errorf("borrow %s: %w", isbn, library.ErrRecordNotFound)
	}
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("borrow %s for %s: %w", isbn, userID, library.ErrRecordNotFound)
	}
	if b.Borrowed {
		return fmt.Errorf("borrow %s: %w", isbn, library.ErrLendingConflict)
	}

	now := m.now()
	b.Borrow()
	b.UpdatedAt = now
	m.books[isbn] = b
	m.loans = append(m.loans, entity.Loan{
		ID:         uuid.New().String(),
		ISBN:       isbn,
		UserID:     userID,
		BorrowedAt: now,
	})
	return nil
}

func (m *Memory) ReturnBook(_ context.Context, isbn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[isbn]
	if !ok {
		return fmt.Errorf("return %s: %w", isbn, library.ErrRecordNotFound)
	}
	if !b.Borrowed {
		return fmt.Errorf("return %s: %w", isbn, library.ErrLendingConflict)
	}

	now := m.now()
	b.Return()
	b.UpdatedAt = now
	m.books[isbn] = b
	for i := range m.loans {
		if m.loans[i].ISBN == isbn && m.loans[i].ReturnedAt == nil {
			m.loans[i].ReturnedAt = &now
		}
	}
	return nil
}

// Loans returns every loan recorded for isbn, oldest first.
func (m *Memory) Loans(_ context.Context, isbn string) ([]entity.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []entity.Loan
	for _, l := range m.loans {
		if l.ISBN == isbn {
			out = append(out, l)
		}
	}
	return out, nil
}
