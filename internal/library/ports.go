package library

import (
	"context"
	"errors"

	"library/internal/entity"
)

// Errors a DatabaseService reports. Writes re-check state under the store's
// own serialization, so a concurrent caller can lose a race the Service's
// read-then-check could not see.
var (
	// ErrRecordNotFound: no record matches the requested key.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists: an insert hit a key that is already stored.
	ErrRecordExists = errors.New("record already exists")
	// ErrLendingConflict: a borrow found the book lent out, or a return found
	// it on the shelf.
	ErrLendingConflict = errors.New("lending state changed")
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks library/internal/library DatabaseService

// DatabaseService defines the contract for catalog and lending persistence.
// Lookups match on the exact, already validated key. AddBook and RegisterUser
// return ErrRecordExists for a stored key. BorrowBook and ReturnBook return
// ErrLendingConflict when the borrowed flag is not in the expected state.
type DatabaseService interface {
	GetBookByISBN(ctx context.Context, isbn string) (entity.Book, error)
	AddBook(ctx context.Context, isbn string, book entity.Book) error
	GetUserByID(ctx context.Context, userID string) (entity.User, error)
	RegisterUser(ctx context.Context, userID string, user entity.User) error
	BorrowBook(ctx context.Context, isbn, userID string) error
	ReturnBook(ctx context.Context, isbn string) error
}

// ReviewService looks up reader reviews for a book. A nil or empty result
// means the book has no reviews. Close releases whatever the provider holds
// for an in-flight lookup; the service stays usable after Close.
type ReviewService interface {
	GetReviewsForBook(ctx context.Context, isbn string) ([]string, error)
	Close() error
}

// Recorder receives operational counters. The zero behaviour is a no-op.
type Recorder interface {
	Operation(op string, err error)
	NotificationAttempt()
	NotificationFailed(mode string)
	ReviewFetchFailed()
}

type nopRecorder struct{}

func (nopRecorder) Operation(string, error)   {}
func (nopRecorder) NotificationAttempt()      {}
func (nopRecorder) NotificationFailed(string) {}
func (nopRecorder) ReviewFetchFailed()        {}
