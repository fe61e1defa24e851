package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository/mocks"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
	"github.com/segyhp/savings-ledger/pkg/logger"
)

type meetingMocks struct {
	meetings *mocks.MockMeetingRepository
	shares   *mocks.MockShareRepository
	loans    *mocks.MockLoanRepository
	welfare  *mocks.MockWelfareRepository
	cache    *mocks.MockSummaryCache
}

func newMeetingServiceWithMocks() (*MeetingService, meetingMocks) {
	m := meetingMocks{
		meetings: &mocks.MockMeetingRepository{},
		shares:   &mocks.MockShareRepository{},
		loans:    &mocks.MockLoanRepository{},
		welfare:  &mocks.MockWelfareRepository{},
		cache:    &mocks.MockSummaryCache{},
	}
	svc := NewMeetingService(m.meetings, m.shares, m.loans, m.welfare, m.cache, logger.Discard())
	return svc, m
}

func TestMeetingService_Recalculate(t *testing.T) {
	meetingID := uuid.New()
	ref := uuidPtr(meetingID)

	tests := []struct {
		name        string
		setupMocks  func(m meetingMocks)
		wantErrCode string
		check       func(t *testing.T, meeting *domain.Meeting)
	}{
		{
			name: "stores totals derived from children",
			setupMocks: func(m meetingMocks) {
				m.meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{
					ID:             meetingID,
					BankBalance:    dec("100"),
					MeetingSummary: domain.MeetingSummary{TotalLoanPaid: dec("40")},
				}, nil)
				m.shares.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Share{
					{MeetingID: ref, Amount: dec("500")},
					{MeetingID: ref, Amount: dec("300")},
				}, nil)
				m.welfare.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Welfare{
					{MeetingID: ref, Type: domain.WelfareTypeContribution, Amount: dec("200")},
					{MeetingID: ref, Type: domain.WelfareTypeFine, Amount: dec("15")},
				}, nil)
				m.loans.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Loan{
					{MeetingID: ref, Status: domain.LoanStatusActive, LoanAmount: dec("1000")},
				}, nil)
				m.meetings.On("UpdateSummary", mock.Anything, meetingID, mock.MatchedBy(func(s domain.MeetingSummary) bool {
					return s.TotalSharesCollected.Equal(dec("800")) && s.TotalLoanPaid.Equal(dec("40"))
				})).Return(nil)
				m.cache.On("Set", mock.Anything, mock.MatchedBy(func(s *domain.SummaryResponse) bool {
					return s.MeetingID == meetingID && s.TotalCash.Equal(dec("100"))
				})).Return(nil)
			},
			check: func(t *testing.T, meeting *domain.Meeting) {
				assert.True(t, meeting.TotalSharesCollected.Equal(dec("800")))
				assert.True(t, meeting.TotalWelfareCollected.Equal(dec("200")))
				assert.True(t, meeting.TotalFines.Equal(dec("15")))
				assert.True(t, meeting.TotalLoansIssued.Equal(dec("1000")))
			},
		},
		{
			name: "cache failure does not fail the recalculation",
			setupMocks: func(m meetingMocks) {
				m.meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{ID: meetingID}, nil)
				m.shares.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Share{}, nil)
				m.welfare.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Welfare{}, nil)
				m.loans.On("ListByMeeting", mock.Anything, meetingID).Return([]*domain.Loan{}, nil)
				m.meetings.On("UpdateSummary", mock.Anything, meetingID, mock.Anything).Return(nil)
				m.cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
			},
			check: func(t *testing.T, meeting *domain.Meeting) {
				assert.True(t, meeting.TotalSharesCollected.IsZero())
			},
		},
		{
			name: "unknown meeting",
			setupMocks: func(m meetingMocks) {
				m.meetings.On("GetByID", mock.Anything, meetingID).Return(nil, sql.ErrNoRows)
			},
			wantErrCode: customError.ErrCodeMeetingNotFound,
		},
		{
			name: "child query failure stores nothing",
			setupMocks: func(m meetingMocks) {
				m.meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{ID: meetingID}, nil)
				m.shares.On("ListByMeeting", mock.Anything, meetingID).Return(nil, errors.New("timeout"))
			},
			wantErrCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newMeetingServiceWithMocks()
			tt.setupMocks(m)

			meeting, err := svc.Recalculate(context.Background(), meetingID)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrCode, customError.Code(err))
				m.meetings.AssertNotCalled(t, "UpdateSummary", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			tt.check(t, meeting)
			m.meetings.AssertExpectations(t)
			m.cache.AssertExpectations(t)
		})
	}
}

func TestMeetingService_Summary_CacheHit(t *testing.T) {
	svc, m := newMeetingServiceWithMocks()
	meetingID := uuid.New()
	cached := &domain.SummaryResponse{MeetingID: meetingID, TotalCash: dec("42")}

	m.cache.On("Get", mock.Anything, meetingID).Return(cached, true, nil)

	summary, err := svc.Summary(context.Background(), meetingID)

	require.NoError(t, err)
	assert.Same(t, cached, summary)
	m.meetings.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestMeetingService_Summary_CacheMiss(t *testing.T) {
	svc, m := newMeetingServiceWithMocks()
	meetingID := uuid.New()

	m.cache.On("Get", mock.Anything, meetingID).Return(nil, false, errors.New("redis down"))
	m.meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{
		ID:          meetingID,
		BankBalance: dec("1500.50"),
		CashInHand:  dec("49.50"),
		MeetingSummary: domain.MeetingSummary{
			TotalSharesCollected: dec("800"),
		},
	}, nil)
	m.cache.On("Set", mock.Anything, mock.AnythingOfType("*domain.SummaryResponse")).Return(nil)

	summary, err := svc.Summary(context.Background(), meetingID)

	require.NoError(t, err)
	assert.True(t, summary.TotalCash.Equal(dec("1550")))
	assert.True(t, summary.TotalSharesCollected.Equal(dec("800")))
	m.cache.AssertExpectations(t)
}

func TestMeetingService_UpdateInvalidatesCache(t *testing.T) {
	svc, m := newMeetingServiceWithMocks()
	meetingID := uuid.New()

	m.meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{ID: meetingID}, nil)
	m.meetings.On("Update", mock.Anything, mock.AnythingOfType("*domain.Meeting")).Return(nil)
	m.cache.On("Invalidate", mock.Anything, meetingID).Return(nil)

	meeting, err := svc.Update(context.Background(), meetingID, &domain.UpdateMeetingRequest{CashInHand: decPtr("75")})

	require.NoError(t, err)
	assert.True(t, meeting.CashInHand.Equal(dec("75")))
	m.cache.AssertExpectations(t)
	m.meetings.AssertNotCalled(t, "UpdateSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestMeetingService_Create_Defaults(t *testing.T) {
	svc, m := newMeetingServiceWithMocks()
	m.meetings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Meeting")).Return(nil)

	meeting, err := svc.Create(context.Background(), &domain.CreateMeetingRequest{MeetingDate: mustDate("2024-05-04")})

	require.NoError(t, err)
	assert.Equal(t, domain.MeetingStatusScheduled, meeting.Status)
	assert.True(t, meeting.TotalCash().IsZero())
	assert.True(t, meeting.TotalLoanPaid.Equal(decimal.Zero))
}

func TestRefreshSummaries_DedupesAndSwallowsErrors(t *testing.T) {
	refresher := &mocks.MockSummaryRefresher{}
	a, b := uuid.New(), uuid.New()

	refresher.On("Recalculate", mock.Anything, a).Return(&domain.Meeting{}, nil).Once()
	refresher.On("Recalculate", mock.Anything, b).Return(nil, errors.New("boom")).Once()

	refreshSummaries(context.Background(), refresher, logger.Discard(), uuidPtr(a), nil, uuidPtr(b), uuidPtr(a))

	refresher.AssertExpectations(t)
	refresher.AssertNumberOfCalls(t, "Recalculate", 2)
}

func TestRefreshSummaries_DeletedMeetingIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "json")
	refresher := &mocks.MockSummaryRefresher{}
	id := uuid.New()

	refresher.On("Recalculate", mock.Anything, id).Return(nil, customError.WrapMeetingNotFound(id.String())).Once()

	refreshSummaries(context.Background(), refresher, log, uuidPtr(id))

	refresher.AssertExpectations(t)
	assert.Contains(t, buf.String(), "meeting summary refresh skipped")
	assert.NotContains(t, buf.String(), "refresh failed")
}

func TestShareService_CreateSurvivesRefreshFailure(t *testing.T) {
	shares := &mocks.MockShareRepository{}
	members := &mocks.MockMemberRepository{}
	meetings := &mocks.MockMeetingRepository{}
	refresher := &mocks.MockSummaryRefresher{}
	svc := NewShareService(shares, members, meetings, refresher, logger.Discard())

	memberID, meetingID := uuid.New(), uuid.New()
	members.On("GetByID", mock.Anything, memberID).Return(&domain.Member{ID: memberID}, nil)
	meetings.On("GetByID", mock.Anything, meetingID).Return(&domain.Meeting{ID: meetingID}, nil)
	shares.On("Create", mock.Anything, mock.AnythingOfType("*domain.Share")).Return(nil)
	refresher.On("Recalculate", mock.Anything, meetingID).Return(nil, customError.WrapDatabaseError(errors.New("deadlock")))

	share, err := svc.Create(context.Background(), &domain.CreateShareRequest{
		MemberID:  memberID,
		MeetingID: uuidPtr(meetingID),
		Amount:    dec("500"),
	})

	require.NoError(t, err)
	assert.True(t, share.Amount.Equal(dec("500")))
	assert.False(t, share.TransactionDate.IsZero())
	refresher.AssertExpectations(t)
}
