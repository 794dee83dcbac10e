package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReviewService is a testify mock of library.ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) GetReviewsForBook(ctx context.Context, isbn string) ([]string, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReviewService) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a testify mock of entity.NotificationService.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendNotification(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
