package library

import (
	"context"
	"fmt"
	"strings"

	"library/internal/entity"
	"library/internal/validate"
)

// notifyMode holds what differs between the strict and lenient pipeline runs.
type notifyMode struct {
	invalidUserID string
	noReviews     string
	delivery      RetryPolicy
}

var lenientMode = notifyMode{
	invalidUserID: msgInvalidUserID,
	noReviews:     msgNoReviewsLenient,
	delivery:      RetryPolicy{MaxAttempts: 1, OnExhaustion: LogOnExhaustion},
}

func (s *Service) strictMode() notifyMode {
	return notifyMode{
		invalidUserID: msgInvalidUserIDLending,
		noReviews:     msgNoReviews,
		delivery:      s.strict,
	}
}

// NotifyUserWithBookReviews sends the user every review of an available book,
// retrying delivery until the attempt budget runs out.
func (s *Service) NotifyUserWithBookReviews(ctx context.Context, isbn, userID string) (err error) {
	defer s.observe("notify", &err)

	return s.notify(ctx, isbn, userID, s.strictMode())
}

func (s *Service) notify(ctx context.Context, isbn, userID string, mode notifyMode) error {
	if !validate.ISBN(isbn) {
		return invalidArgument(msgInvalidISBN)
	}
	if !validate.UserID(userID) {
		return invalidArgument(mode.invalidUserID)
	}

	book, err := s.lookupBook(ctx, isbn)
	if err != nil {
		return err
	}
	return s.notifyLoaded(ctx, book, userID, mode)
}

// notifyLoaded runs the pipeline from the user lookup onward for a book the
// caller has already validated and read.
func (s *Service) notifyLoaded(ctx context.Context, book entity.Book, userID string, mode notifyMode) error {
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return err
	}
	if book.Borrowed {
		return newError(ErrBookAlreadyBorrowed, msgBookAlreadyBorrowed)
	}
	if user.Notifier == nil {
		return invalidArgument(msgInvalidUserAddress)
	}

	return s.sendReviews(ctx, book, user, mode)
}

// sendReviews owns the review provider for the rest of the pipeline and
// releases it exactly once on every return path.
func (s *Service) sendReviews(ctx context.Context, book entity.Book, user entity.User, mode notifyMode) error {
	defer s.releaseReviews()

	reviews, err := s.reviews.GetReviewsForBook(ctx, book.ISBN)
	if err != nil {
		s.metrics.ReviewFetchFailed()
		return wrapError(ErrReviewServiceUnavailable, msgReviewsUnavailable, err)
	}
	if len(reviews) == 0 {
		return newError(ErrNoReviewsFound, mode.noReviews)
	}

	return s.deliver(ctx, user.Notifier, composeMessage(book.Title, reviews), mode.delivery)
}

func (s *Service) releaseReviews() {
	if err := s.reviews.Close(); err != nil {
		s.logger.Printf("review service close failed: %v", err)
	}
}

func composeMessage(title string, reviews []string) string {
	return fmt.Sprintf("Reviews for '%s':\n%s", title, strings.Join(reviews, "\n"))
}
