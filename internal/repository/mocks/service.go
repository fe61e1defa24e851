package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/savings-ledger/internal/domain"
)

// MockSummaryRefresher records which meetings were asked to recalculate
type MockSummaryRefresher struct {
	mock.Mock
}

func (m *MockSummaryRefresher) Recalculate(ctx context.Context, meetingID uuid.UUID) (*domain.Meeting, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Meeting), args.Error(1)
}

// MockSummaryCache is a mock of the meeting summary cache
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Get(ctx context.Context, meetingID uuid.UUID) (*domain.SummaryResponse, bool, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SummaryResponse), args.Bool(1), args.Error(2)
}

func (m *MockSummaryCache) Set(ctx context.Context, summary *domain.SummaryResponse) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}
