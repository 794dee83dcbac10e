package library

import (
	"context"
	"errors"
	"fmt"

	"library/internal/validate"
)

// BorrowBook lends an available book to a registered user.
func (s *Service) BorrowBook(ctx context.Context, isbn, userID string) (err error) {
	defer s.observe("borrow_book", &err)

	if !validate.ISBN(isbn) {
		return invalidArgument(msgInvalidISBN)
	}
	book, err := s.lookupBook(ctx, isbn)
	if err != nil {
		return err
	}
	if !validate.UserID(userID) {
		return invalidArgument(msgInvalidUserIDLending)
	}
	if _, err := s.lookupUser(ctx, userID); err != nil {
		return err
	}
	if book.Borrowed {
		return newError(ErrBookAlreadyBorrowed, msgBookIsBorrowed)
	}

	if err := s.db.BorrowBook(ctx, isbn, userID); err != nil {
		if errors.Is(err, ErrLendingConflict) {
			return wrapError(ErrBookAlreadyBorrowed, msgBookIsBorrowed, err)
		}
		return fmt.Errorf("borrow book: %w", err)
	}
	return nil
}

// ReturnBook puts a borrowed book back on the shelf.
func (s *Service) ReturnBook(ctx context.Context, isbn string) (err error) {
	defer s.observe("return_book", &err)

	if !validate.ISBN(isbn) {
		return invalidArgument(msgInvalidISBN)
	}
	book, err := s.lookupBook(ctx, isbn)
	if err != nil {
		return err
	}
	if !book.Borrowed {
		return newError(ErrBookNotBorrowed, msgBookNotBorrowed)
	}

	if err := s.db.ReturnBook(ctx, isbn); err != nil {
		if errors.Is(err, ErrLendingConflict) {
			return wrapError(ErrBookNotBorrowed, msgBookNotBorrowed, err)
		}
		return fmt.Errorf("return book: %w", err)
	}
	return nil
}
