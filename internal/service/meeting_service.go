package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/cache"
	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
)

// MeetingService owns meetings and is the only writer of their summary totals
type MeetingService struct {
	MeetingRepo repository.MeetingRepository
	ShareRepo   repository.ShareRepository
	LoanRepo    repository.LoanRepository
	WelfareRepo repository.WelfareRepository
	cache       cache.SummaryCache
	logger      *slog.Logger
}

func NewMeetingService(
	meetingRepo repository.MeetingRepository,
	shareRepo repository.ShareRepository,
	loanRepo repository.LoanRepository,
	welfareRepo repository.WelfareRepository,
	summaryCache cache.SummaryCache,
	logger *slog.Logger,
) *MeetingService {
	return &MeetingService{
		MeetingRepo: meetingRepo,
		ShareRepo:   shareRepo,
		LoanRepo:    loanRepo,
		WelfareRepo: welfareRepo,
		cache:       summaryCache,
		logger:      logger.With(slog.String("component", "meeting_service")),
	}
}

func (s *MeetingService) Create(ctx context.Context, request *domain.CreateMeetingRequest) (*domain.Meeting, error) {
	if request.MeetingDate.IsZero() {
		return nil, customError.WrapValidation("meeting_date", "is required")
	}
	if request.Attendance < 0 {
		return nil, customError.WrapValidation("attendance", "must be greater than or equal to 0")
	}
	if err := checkCents("bank_balance", request.BankBalance); err != nil {
		return nil, err
	}
	if err := checkCents("cash_in_hand", request.CashInHand); err != nil {
		return nil, err
	}

	status := request.Status
	if status == "" {
		status = domain.MeetingStatusScheduled
	}

	now := time.Now().UTC()
	meeting := &domain.Meeting{
		ID:          uuid.New(),
		MeetingDate: request.MeetingDate,
		Venue:       request.Venue,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
		Attendance:  request.Attendance,
		Status:      status,
		Notes:       request.Notes,
		BankBalance: valueOrZero(request.BankBalance),
		CashInHand:  valueOrZero(request.CashInHand),
		MeetingSummary: domain.MeetingSummary{
			TotalSharesCollected:  decimal.Zero,
			TotalWelfareCollected: decimal.Zero,
			TotalLoanPaid:         decimal.Zero,
			TotalLoansIssued:      decimal.Zero,
			TotalFines:            decimal.Zero,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.MeetingRepo.Create(ctx, meeting); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "meeting created",
		slog.String("meeting_id", meeting.ID.String()),
		slog.Time("meeting_date", meeting.MeetingDate))

	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	return getMeeting(ctx, s.MeetingRepo, id)
}

func (s *MeetingService) List(ctx context.Context, status string) ([]*domain.Meeting, error) {
	meetings, err := s.MeetingRepo.List(ctx, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return meetings, nil
}

// Update edits the descriptive fields; the summary totals are not writable here
func (s *MeetingService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateMeetingRequest) (*domain.Meeting, error) {
	meeting, err := getMeeting(ctx, s.MeetingRepo, id)
	if err != nil {
		return nil, err
	}

	if request.MeetingDate != nil {
		meeting.MeetingDate = *request.MeetingDate
	}
	if request.Venue != nil {
		meeting.Venue = *request.Venue
	}
	if request.StartTime != nil {
		meeting.StartTime = *request.StartTime
	}
	if request.EndTime != nil {
		meeting.EndTime = *request.EndTime
	}
	if request.Attendance != nil {
		if *request.Attendance < 0 {
			return nil, customError.WrapValidation("attendance", "must be greater than or equal to 0")
		}
		meeting.Attendance = *request.Attendance
	}
	if request.Status != nil {
		meeting.Status = *request.Status
	}
	if request.Notes != nil {
		meeting.Notes = *request.Notes
	}
	if err := checkCents("bank_balance", request.BankBalance); err != nil {
		return nil, err
	}
	if err := checkCents("cash_in_hand", request.CashInHand); err != nil {
		return nil, err
	}
	if request.BankBalance != nil {
		meeting.BankBalance = *request.BankBalance
	}
	if request.CashInHand != nil {
		meeting.CashInHand = *request.CashInHand
	}
	meeting.UpdatedAt = time.Now().UTC()

	if err := s.MeetingRepo.Update(ctx, meeting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMeetingNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	// cached summaries carry bank balance and cash in hand
	s.invalidate(ctx, id)

	return meeting, nil
}

func (s *MeetingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.MeetingRepo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMeetingNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx, id)
	s.logger.InfoContext(ctx, "meeting deleted", slog.String("meeting_id", id.String()))

	return nil
}

// Recalculate derives the meeting's totals from its child records and stores
// them. Calling it again without intervening writes stores the same totals.
func (s *MeetingService) Recalculate(ctx context.Context, meetingID uuid.UUID) (*domain.Meeting, error) {
	meeting, err := getMeeting(ctx, s.MeetingRepo, meetingID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, meeting)
	if err != nil {
		return nil, err
	}

	if err := s.MeetingRepo.UpdateSummary(ctx, meetingID, summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMeetingNotFound(meetingID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	meeting.MeetingSummary = summary

	s.logger.DebugContext(ctx, "meeting summary recalculated",
		slog.String("meeting_id", meetingID.String()),
		slog.String("total_shares_collected", summary.TotalSharesCollected.String()),
		slog.String("total_loans_issued", summary.TotalLoansIssued.String()))

	if err := s.cache.Set(ctx, summaryResponse(meeting)); err != nil {
		s.logger.WarnContext(ctx, "caching meeting summary failed",
			slog.String("meeting_id", meetingID.String()),
			slog.Any("error", customError.WrapCacheError(err)))
	}

	return meeting, nil
}

// Summary returns the stored totals plus total cash, served from cache when possible
func (s *MeetingService) Summary(ctx context.Context, meetingID uuid.UUID) (*domain.SummaryResponse, error) {
	cached, ok, err := s.cache.Get(ctx, meetingID)
	if err != nil {
		s.logger.WarnContext(ctx, "reading cached meeting summary failed",
			slog.String("meeting_id", meetingID.String()),
			slog.Any("error", customError.WrapCacheError(err)))
	}
	if ok {
		return cached, nil
	}

	meeting, err := getMeeting(ctx, s.MeetingRepo, meetingID)
	if err != nil {
		return nil, err
	}

	summary := summaryResponse(meeting)
	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "caching meeting summary failed",
			slog.String("meeting_id", meetingID.String()),
			slog.Any("error", customError.WrapCacheError(err)))
	}

	return summary, nil
}

// Audit compares every live meeting's stored totals with its child records.
// With repair set, drifted meetings are recalculated.
func (s *MeetingService) Audit(ctx context.Context, repair bool) ([]domain.SummaryDrift, error) {
	meetings, err := s.MeetingRepo.List(ctx, "")
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	drifts := make([]domain.SummaryDrift, 0)
	for _, meeting := range meetings {
		if err := ctx.Err(); err != nil {
			return drifts, err
		}

		expected, err := s.summarize(ctx, meeting)
		if err != nil {
			return drifts, err
		}
		if expected.Equal(meeting.MeetingSummary) {
			continue
		}

		drift := domain.SummaryDrift{
			MeetingID: meeting.ID,
			Stored:    meeting.MeetingSummary,
			Expected:  expected,
		}

		if repair {
			if _, err := s.Recalculate(ctx, meeting.ID); err != nil {
				s.logger.ErrorContext(ctx, "repairing meeting summary failed",
					slog.String("meeting_id", meeting.ID.String()),
					slog.Any("error", err))
			} else {
				drift.Repaired = true
			}
		}

		s.logger.WarnContext(ctx, "meeting summary drift detected",
			slog.String("meeting_id", meeting.ID.String()),
			slog.Bool("repaired", drift.Repaired))

		drifts = append(drifts, drift)
	}

	s.logger.InfoContext(ctx, "meeting summary audit finished",
		slog.Int("meetings", len(meetings)),
		slog.Int("drifted", len(drifts)))

	return drifts, nil
}

func (s *MeetingService) summarize(ctx context.Context, meeting *domain.Meeting) (domain.MeetingSummary, error) {
	shares, err := s.ShareRepo.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return domain.MeetingSummary{}, customError.WrapDatabaseError(err)
	}

	welfare, err := s.WelfareRepo.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return domain.MeetingSummary{}, customError.WrapDatabaseError(err)
	}

	loans, err := s.LoanRepo.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return domain.MeetingSummary{}, customError.WrapDatabaseError(err)
	}

	return domain.SummarizeMeeting(meeting.ID, shares, welfare, loans, meeting.MeetingSummary), nil
}

func (s *MeetingService) invalidate(ctx context.Context, meetingID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, meetingID); err != nil {
		s.logger.WarnContext(ctx, "invalidating meeting summary failed",
			slog.String("meeting_id", meetingID.String()),
			slog.Any("error", customError.WrapCacheError(err)))
	}
}

func summaryResponse(meeting *domain.Meeting) *domain.SummaryResponse {
	return &domain.SummaryResponse{
		MeetingID:      meeting.ID,
		MeetingSummary: meeting.MeetingSummary,
		BankBalance:    meeting.BankBalance,
		CashInHand:     meeting.CashInHand,
		TotalCash:      meeting.TotalCash(),
	}
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
