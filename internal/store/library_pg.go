package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library/internal/entity"
	"library/internal/library"
)

// ChannelResolver turns a stored user address back into a live notification
// channel.
type ChannelResolver func(address string) (entity.NotificationService, error)

type LibraryPG struct {
	db      *pgxpool.Pool
	resolve ChannelResolver
}

func NewLibraryPG(db *pgxpool.Pool, resolve ChannelResolver) *LibraryPG {
	return &LibraryPG{db: db, resolve: resolve}
}

func (r *LibraryPG) GetBookByISBN(ctx context.Context, isbn string) (entity.Book, error) {
	const query = `
		SELECT isbn, title, author, borrowed, created_at, updated_at
		FROM books
		WHERE isbn = $1
	`
	var b entity.Book
	err := r.db.QueryRow(ctx, query, isbn).Scan(&b.ISBN, &b.Title, &b.Author, &b.Borrowed, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, library.ErrRecordNotFound
		}
		return entity.Book{}, fmt.Errorf("get book %s: %w", isbn, err)
	}
	return b, nil
}

func (r *LibraryPG) AddBook(ctx context.Context, isbn string, b entity.Book) error {
	const query = `
		INSERT INTO books (isbn, title, author, borrowed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (isbn) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, isbn, b.Title, b.Author, b.Borrowed)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add %s: %w", isbn, library.ErrRecordExists)
	}
	return nil
}

func (r *LibraryPG) GetUserByID(ctx context.Context, userID string) (entity.User, error) {
	const query = `
		SELECT id, name, address, created_at
		FROM users
		WHERE id = $1
	`
	var u entity.User
	err := r.db.QueryRow(ctx, query, userID).Scan(&u.ID, &u.Name, &u.Address, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, library.ErrRecordNotFound
		}
		return entity.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}

	// An address that no longer resolves leaves the user without a channel.
	if notifier, err := r.resolve(u.Address); err == nil {
		u.Notifier = notifier
	}
	return u, nil
}

func (r *LibraryPG) RegisterUser(ctx context.Context, userID string, u entity.User) error {
	const query = `
		INSERT INTO users (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, u.Name, u.Address)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("register %s: %w", userID, library.ErrRecordExists)
	}
	return nil
}

func (r *LibraryPG) BorrowBook(ctx context.Context, isbn, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE books SET borrowed = TRUE, updated_at = now() WHERE isbn = $1 AND borrowed = FALSE`, isbn)
	if err != nil {
		return fmt.Errorf("mark book borrowed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("borrow %s: %w", isbn, missOrConflict(ctx, tx, isbn))
	}

	const loanSQL = `
		INSERT INTO loans (id, isbn, user_id, borrowed_at)
		VALUES ($1, $2, $3, now())
	`
	if _, err := tx.Exec(ctx, loanSQL, uuid.New().String(), isbn, userID); err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *LibraryPG) ReturnBook(ctx context.Context, isbn string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE books SET borrowed = FALSE, updated_at = now() WHERE isbn = $1 AND borrowed = TRUE`, isbn)
	if err != nil {
		return fmt.Errorf("mark book returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("return %s: %w", isbn, missOrConflict(ctx, tx, isbn))
	}

	if _, err := tx.Exec(ctx, `UPDATE loans SET returned_at = now() WHERE isbn = $1 AND returned_at IS NULL`, isbn); err != nil {
		return fmt.Errorf("close loan: %w", err)
	}

	return tx.Commit(ctx)
}

// missOrConflict explains a conditional lending update that matched no row.
func missOrConflict(ctx context.Context, tx pgx.Tx, isbn string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return library.ErrRecordNotFound
	}
	return library.ErrLendingConflict
}

// Loans returns every loan recorded for isbn, oldest first.
func (r *LibraryPG) Loans(ctx context.Context, isbn string) ([]entity.Loan, error) {
	const query = `
		SELECT id, isbn, user_id, borrowed_at, returned_at
		FROM loans
		WHERE isbn = $1
		ORDER BY borrowed_at ASC
	`
	rows, err := r.db.Query(ctx, query, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Loan
	for rows.Next() {
		var l entity.Loan
		if err := rows.Scan(&l.ID, &l.ISBN, &l.UserID, &l.BorrowedAt, &l.ReturnedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Ping reports whether the database is reachable.
func (r *LibraryPG) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
