package library

import "errors"

// Error kinds. Every error returned by Service matches exactly one of these
// through errors.Is.
var (
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrBookNotFound             = errors.New("book not found")
	ErrUserNotRegistered        = errors.New("user not registered")
	ErrBookAlreadyBorrowed      = errors.New("book already borrowed")
	ErrBookNotBorrowed          = errors.New("book not borrowed")
	ErrAlreadyExists            = errors.New("already exists")
	ErrNoReviewsFound           = errors.New("no reviews found")
	ErrReviewServiceUnavailable = errors.New("review service unavailable")
	ErrNotificationFailed       = errors.New("notification failed")
)

// Error carries the caller-facing message of a failed operation. The message
// is part of each operation's contract and differs between call sites.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func invalidArgument(message string) error {
	return newError(ErrInvalidArgument, message)
}

// KindOf returns the error kind carried by err, or nil when err did not come
// from a Service operation.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
