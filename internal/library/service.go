package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"library/internal/entity"
	"library/internal/validate"
)

// DefaultDeliveryAttempts is how many times NotifyUserWithBookReviews tries a
// channel before giving up.
const DefaultDeliveryAttempts = 5

// Service is a stateless facade over the record store and the review
// provider. It validates input, enforces the borrow/return cycle and drives
// review notifications.
type Service struct {
	db      DatabaseService
	reviews ReviewService
	logger  *log.Logger
	metrics Recorder
	strict  RetryPolicy
}

type Option func(*Service)

// WithLogger sets where retry and lenient-path diagnostics are written.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithDeliveryAttempts overrides the attempt budget of the strict
// notification path.
func WithDeliveryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.strict.MaxAttempts = n
		}
	}
}

// NewService creates a new library service.
func NewService(db DatabaseService, reviews ReviewService, opts ...Option) *Service {
	s := &Service{
		db:      db,
		reviews: reviews,
		logger:  log.New(os.Stderr, "", 0),
		metrics: nopRecorder{},
		strict:  RetryPolicy{MaxAttempts: DefaultDeliveryAttempts, OnExhaustion: RaiseOnExhaustion},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBook stores a new, not yet borrowed book.
func (s *Service) AddBook(ctx context.Context, book *entity.Book) (err error) {
	defer s.observe("add_book", &err)

	if book == nil {
		return invalidArgument(msgInvalidBook)
	}
	if !validate.ISBN(book.ISBN) {
		return invalidArgument(msgInvalidISBN)
	}
	if !validate.Title(book.Title) {
		return invalidArgument(msgInvalidTitle)
	}
	if !validate.Author(book.Author) {
		return invalidArgument(msgInvalidAuthor)
	}
	if book.Borrowed {
		return invalidArgument(msgInvalidBorrowedState)
	}

	_, err = s.db.GetBookByISBN(ctx, book.ISBN)
	switch {
	case err == nil:
		return newError(ErrAlreadyExists, msgBookExists)
	case !errors.Is(err, ErrRecordNotFound):
		return fmt.Errorf("lookup book: %w", err)
	}

	if err := s.db.AddBook(ctx, book.ISBN, *book); err != nil {
		if errors.Is(err, ErrRecordExists) {
			return wrapError(ErrAlreadyExists, msgBookExists, err)
		}
		return fmt.Errorf("add book: %w", err)
	}
	return nil
}

// RegisterUser stores a new user together with its notification channel.
func (s *Service) RegisterUser(ctx context.Context, user *entity.User) (err error) {
	defer s.observe("register_user", &err)

	if user == nil {
		return invalidArgument(msgInvalidUser)
	}
	if !validate.UserID(user.ID) {
		return invalidArgument(msgInvalidUserID)
	}
	if !validate.UserName(user.Name) {
		return invalidArgument(msgInvalidUserName)
	}
	if user.Notifier == nil {
		return invalidArgument(msgInvalidUserAddress)
	}

	_, err = s.db.GetUserByID(ctx, user.ID)
	switch {
	case err == nil:
		return newError(ErrAlreadyExists, msgUserExists)
	case !errors.Is(err, ErrRecordNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.db.RegisterUser(ctx, user.ID, *user); err != nil {
		if errors.Is(err, ErrRecordExists) {
			return wrapError(ErrAlreadyExists, msgUserExists, err)
		}
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// GetBookByISBN returns an available book and, on a best-effort basis, sends
// the user its reviews. Notification problems are logged, never returned.
func (s *Service) GetBookByISBN(ctx context.Context, isbn, userID string) (book entity.Book, err error) {
	defer s.observe("get_book", &err)

	if !validate.ISBN(isbn) {
		return entity.Book{}, invalidArgument(msgInvalidISBN)
	}
	if !validate.UserID(userID) {
		return entity.Book{}, invalidArgument(msgInvalidUserID)
	}

	book, err = s.lookupBook(ctx, isbn)
	if err != nil {
		return entity.Book{}, err
	}
	if book.Borrowed {
		return entity.Book{}, newError(ErrBookAlreadyBorrowed, msgBookWasBorrowed)
	}

	if s.notifyLoaded(ctx, book, userID, lenientMode) != nil {
		s.logger.Println(msgNotificationFailed)
	}
	return book, nil
}

func (s *Service) lookupBook(ctx context.Context, isbn string) (entity.Book, error) {
	book, err := s.db.GetBookByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return entity.Book{}, wrapError(ErrBookNotFound, msgBookNotFound, err)
		}
		return entity.Book{}, fmt.Errorf("lookup book: %w", err)
	}
	return book, nil
}

func (s *Service) lookupUser(ctx context.Context, userID string) (entity.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return entity.User{}, wrapError(ErrUserNotRegistered, msgUserNotFound, err)
		}
		return entity.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *Service) observe(op string, err *error) {
	s.metrics.Operation(op, *err)
}
