package store

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library/internal/entity"
	"library/internal/library"
	"library/internal/testutil"
)

func TestMemory_BooksAndUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetBookByISBN(ctx, testutil.TestISBN)
	assert.ErrorIs(t, err, library.ErrRecordNotFound)

	require.NoError(t, m.AddBook(ctx, testutil.TestISBN, testutil.NewTestBook()))
	b, err := m.GetBookByISBN(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.Equal(t, "TITLE", b.Title)
	assert.False(t, b.Borrowed)
	assert.False(t, b.CreatedAt.IsZero())

	_, err = m.GetUserByID(ctx, testutil.TestUserID)
	assert.ErrorIs(t, err, library.ErrRecordNotFound)

	notifier := new(testutil.MockNotifier)
	require.NoError(t, m.RegisterUser(ctx, testutil.TestUserID, testutil.NewTestUser(notifier)))
	u, err := m.GetUserByID(ctx, testutil.TestUserID)
	require.NoError(t, err)
	assert.Same(t, notifier, u.Notifier)
}

func TestMemory_BorrowRequiresKnownRecords(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assert.ErrorIs(t, m.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID), library.ErrRecordNotFound)
	assert.ErrorIs(t, m.ReturnBook(ctx, testutil.TestISBN), library.ErrRecordNotFound)

	require.NoError(t, m.AddBook(ctx, testutil.TestISBN, testutil.NewTestBook()))
	assert.ErrorIs(t, m.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID), library.ErrRecordNotFound)
}

func TestMemory_LendingCycleThroughService(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	svc := library.NewService(m, new(testutil.MockReviewService))

	book := testutil.NewTestBook()
	require.NoError(t, svc.AddBook(ctx, &book))
	err := svc.AddBook(ctx, &book)
	assert.EqualError(t, err, "Book already exists.")

	user := testutil.NewTestUser(new(testutil.MockNotifier))
	require.NoError(t, svc.RegisterUser(ctx, &user))

	err = svc.ReturnBook(ctx, testutil.TestISBN)
	assert.EqualError(t, err, "Book wasn't borrowed!")

	require.NoError(t, svc.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID))
	stored, err := m.GetBookByISBN(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.True(t, stored.Borrowed)

	err = svc.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID)
	assert.EqualError(t, err, "Book is already borrowed!")

	require.NoError(t, svc.ReturnBook(ctx, testutil.TestISBN))
	stored, err = m.GetBookByISBN(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.False(t, stored.Borrowed)

	loans, err := m.Loans(ctx, testutil.TestISBN)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, testutil.TestUserID, loans[0].UserID)
	assert.NotEmpty(t, loans[0].ID)
	assert.NotNil(t, loans[0].ReturnedAt)
}

func TestMemory_NotificationThroughService(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	reviews := new(testutil.MockReviewService)
	notifier := new(testutil.MockNotifier)
	var logs bytes.Buffer
	svc := library.NewService(m, reviews, library.WithLogger(log.New(&logs, "", 0)))

	book := testutil.NewTestBook()
	require.NoError(t, svc.AddBook(ctx, &book))
	user := testutil.NewTestUser(notifier)
	require.NoError(t, svc.RegisterUser(ctx, &user))

	reviews.On("GetReviewsForBook", mock.Anything, testutil.TestISBN).Return([]string{"Review 1", "Review 2"}, nil)
	reviews.On("Close").Return(nil)
	notifier.On("SendNotification", mock.Anything, mock.Anything).Return(errors.New("mailbox full"))

	got, err := svc.GetBookByISBN(ctx, testutil.TestISBN, testutil.TestUserID)
	require.NoError(t, err)
	assert.Equal(t, "TITLE", got.Title)
	assert.Equal(t, "Notification failed!\n", logs.String())
	notifier.AssertNumberOfCalls(t, "SendNotification", 1)

	logs.Reset()
	err = svc.NotifyUserWithBookReviews(ctx, testutil.TestISBN, testutil.TestUserID)
	assert.EqualError(t, err, "Notification failed!")
	notifier.AssertNumberOfCalls(t, "SendNotification", 6)
	reviews.AssertNumberOfCalls(t, "Close", 2)
}

func TestMemory_WritesRecheckState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AddBook(ctx, testutil.TestISBN, testutil.NewTestBook()))
	renamed := testutil.NewTestBook()
	renamed.Title = "OTHER"
	assert.ErrorIs(t, m.AddBook(ctx, testutil.TestISBN, renamed), library.ErrRecordExists)
	b, err := m.GetBookByISBN(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.Equal(t, "TITLE", b.Title)

	require.NoError(t, m.RegisterUser(ctx, testutil.TestUserID, testutil.NewTestUser(nil)))
	assert.ErrorIs(t, m.RegisterUser(ctx, testutil.TestUserID, testutil.NewTestUser(nil)), library.ErrRecordExists)

	assert.ErrorIs(t, m.ReturnBook(ctx, testutil.TestISBN), library.ErrLendingConflict)
	require.NoError(t, m.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID))
	assert.ErrorIs(t, m.BorrowBook(ctx, testutil.TestISBN, testutil.TestUserID), library.ErrLendingConflict)

	loans, err := m.Loans(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}

// barrierStore holds every book read until n readers have arrived, so all
// of them see the same state before anyone writes.
type barrierStore struct {
	*Memory
	arrived sync.WaitGroup
}

func (s *barrierStore) GetBookByISBN(ctx context.Context, isbn string) (entity.Book, error) {
	b, err := s.Memory.GetBookByISBN(ctx, isbn)
	s.arrived.Done()
	s.arrived.Wait()
	return b, err
}

func TestMemory_ConcurrentBorrowLendsOnce(t *testing.T) {
	ctx := context.Background()
	const borrowers = 2

	m := NewMemory()
	require.NoError(t, m.AddBook(ctx, testutil.TestISBN, testutil.NewTestBook()))
	require.NoError(t, m.RegisterUser(ctx, testutil.TestUserID, testutil.NewTestUser(nil)))
	require.NoError(t, m.RegisterUser(ctx, "222222222222", entity.User{ID: "222222222222", Name: "Second"}))

	db := &barrierStore{Memory: m}
	db.arrived.Add(borrowers)
	svc := library.NewService(db, new(testutil.MockReviewService))

	errs := make([]error, borrowers)
	var wg sync.WaitGroup
	for i, userID := range []string{testutil.TestUserID, "222222222222"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.BorrowBook(ctx, testutil.TestISBN, userID)
		}()
	}
	wg.Wait()

	var lent, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			lent++
		case errors.Is(err, library.ErrBookAlreadyBorrowed):
			assert.Equal(t, "Book is already borrowed!", err.Error())
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, lent)
	assert.Equal(t, 1, refused)

	loans, err := m.Loans(ctx, testutil.TestISBN)
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}
