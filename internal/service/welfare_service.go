package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
)

// WelfareService records welfare transactions and each member's running
// contribution total
type WelfareService struct {
	WelfareRepo repository.WelfareRepository
	MemberRepo  repository.MemberRepository
	MeetingRepo repository.MeetingRepository
	refresher   SummaryRefresher
	logger      *slog.Logger
}

func NewWelfareService(
	welfareRepo repository.WelfareRepository,
	memberRepo repository.MemberRepository,
	meetingRepo repository.MeetingRepository,
	refresher SummaryRefresher,
	logger *slog.Logger,
) *WelfareService {
	return &WelfareService{
		WelfareRepo: welfareRepo,
		MemberRepo:  memberRepo,
		MeetingRepo: meetingRepo,
		refresher:   refresher,
		logger:      logger.With(slog.String("component", "welfare_service")),
	}
}

// Create stores the transaction. For a contribution, cumulative_amount is the
// member's persisted contributions plus this one; it is not revisited later.
func (s *WelfareService) Create(ctx context.Context, request *domain.CreateWelfareRequest) (*domain.Welfare, error) {
	if request.Amount.IsNegative() {
		return nil, customError.WrapValidation("amount", "must be greater than or equal to 0")
	}
	if err := checkCents("amount", &request.Amount); err != nil {
		return nil, err
	}
	if !domain.IsValidWelfareType(request.Type) {
		return nil, customError.WrapValidation("type", "must be one of contribution, benefit, fine")
	}
	if err := checkMemberRef(ctx, s.MemberRepo, request.MemberID); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
		return nil, err
	}

	cumulative := decimal.Zero
	if request.Type == domain.WelfareTypeContribution {
		prior, err := s.WelfareRepo.SumContributions(ctx, request.MemberID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		cumulative = prior.Add(request.Amount)
	}

	now := time.Now().UTC()
	transactionDate := request.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = now
	}

	welfare := &domain.Welfare{
		ID:               uuid.New(),
		MemberID:         request.MemberID,
		MeetingID:        request.MeetingID,
		Amount:           request.Amount,
		CumulativeAmount: cumulative,
		TransactionDate:  transactionDate,
		Type:             request.Type,
		Description:      request.Description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.WelfareRepo.Create(ctx, welfare); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "welfare recorded",
		slog.String("welfare_id", welfare.ID.String()),
		slog.String("member_id", welfare.MemberID.String()),
		slog.String("type", welfare.Type),
		slog.String("cumulative_amount", welfare.CumulativeAmount.String()))

	refreshSummaries(ctx, s.refresher, s.logger, welfare.MeetingID)

	return welfare, nil
}

func (s *WelfareService) Get(ctx context.Context, id uuid.UUID) (*domain.Welfare, error) {
	welfare, err := s.WelfareRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapWelfareNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return welfare, nil
}

// Update edits the record without touching any cumulative_amount
func (s *WelfareService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateWelfareRequest) (*domain.Welfare, error) {
	welfare, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousMeeting := welfare.MeetingID

	if request.Amount != nil {
		if request.Amount.IsNegative() {
			return nil, customError.WrapValidation("amount", "must be greater than or equal to 0")
		}
		if err := checkCents("amount", request.Amount); err != nil {
			return nil, err
		}
		welfare.Amount = *request.Amount
	}
	if request.Type != nil {
		if !domain.IsValidWelfareType(*request.Type) {
			return nil, customError.WrapValidation("type", "must be one of contribution, benefit, fine")
		}
		welfare.Type = *request.Type
	}
	if request.MeetingID != nil {
		if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
			return nil, err
		}
		welfare.MeetingID = request.MeetingID
	}
	if request.TransactionDate != nil {
		welfare.TransactionDate = *request.TransactionDate
	}
	if request.Description != nil {
		welfare.Description = *request.Description
	}
	welfare.UpdatedAt = time.Now().UTC()

	if err := s.WelfareRepo.Update(ctx, welfare); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapWelfareNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	refreshSummaries(ctx, s.refresher, s.logger, previousMeeting, welfare.MeetingID)

	return welfare, nil
}

func (s *WelfareService) Delete(ctx context.Context, id uuid.UUID) error {
	welfare, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.WelfareRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapWelfareNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "welfare deleted", slog.String("welfare_id", id.String()))

	refreshSummaries(ctx, s.refresher, s.logger, welfare.MeetingID)

	return nil
}

func (s *WelfareService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Welfare, error) {
	if _, err := getMember(ctx, s.MemberRepo, memberID); err != nil {
		return nil, err
	}

	records, err := s.WelfareRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return records, nil
}

func (s *WelfareService) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Welfare, error) {
	if _, err := getMeeting(ctx, s.MeetingRepo, meetingID); err != nil {
		return nil, err
	}

	records, err := s.WelfareRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return records, nil
}
