package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
)

type ShareService struct {
	ShareRepo   repository.ShareRepository
	MemberRepo  repository.MemberRepository
	MeetingRepo repository.MeetingRepository
	refresher   SummaryRefresher
	logger      *slog.Logger
}

func NewShareService(
	shareRepo repository.ShareRepository,
	memberRepo repository.MemberRepository,
	meetingRepo repository.MeetingRepository,
	refresher SummaryRefresher,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		ShareRepo:   shareRepo,
		MemberRepo:  memberRepo,
		MeetingRepo: meetingRepo,
		refresher:   refresher,
		logger:      logger.With(slog.String("component", "share_service")),
	}
}

func (s *ShareService) Create(ctx context.Context, request *domain.CreateShareRequest) (*domain.Share, error) {
	if request.Amount.IsNegative() {
		return nil, customError.WrapValidation("amount", "must be greater than or equal to 0")
	}
	if err := checkCents("amount", &request.Amount); err != nil {
		return nil, err
	}
	if err := checkMemberRef(ctx, s.MemberRepo, request.MemberID); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionDate := request.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = now
	}

	share := &domain.Share{
		ID:              uuid.New(),
		MemberID:        request.MemberID,
		MeetingID:       request.MeetingID,
		Amount:          request.Amount,
		TransactionDate: transactionDate,
		PaymentMethod:   request.PaymentMethod,
		Reference:       request.Reference,
		Notes:           request.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.ShareRepo.Create(ctx, share); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "share recorded",
		slog.String("share_id", share.ID.String()),
		slog.String("member_id", share.MemberID.String()),
		slog.String("amount", share.Amount.String()))

	refreshSummaries(ctx, s.refresher, s.logger, share.MeetingID)

	return share, nil
}

func (s *ShareService) Get(ctx context.Context, id uuid.UUID) (*domain.Share, error) {
	share, err := s.ShareRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapShareNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return share, nil
}

func (s *ShareService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateShareRequest) (*domain.Share, error) {
	share, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousMeeting := share.MeetingID

	if request.Amount != nil {
		if request.Amount.IsNegative() {
			return nil, customError.WrapValidation("amount", "must be greater than or equal to 0")
		}
		if err := checkCents("amount", request.Amount); err != nil {
			return nil, err
		}
		share.Amount = *request.Amount
	}
	if request.MeetingID != nil {
		if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
			return nil, err
		}
		share.MeetingID = request.MeetingID
	}
	if request.TransactionDate != nil {
		share.TransactionDate = *request.TransactionDate
	}
	if request.PaymentMethod != nil {
		share.PaymentMethod = *request.PaymentMethod
	}
	if request.Reference != nil {
		share.Reference = *request.Reference
	}
	if request.Notes != nil {
		share.Notes = *request.Notes
	}
	share.UpdatedAt = time.Now().UTC()

	if err := s.ShareRepo.Update(ctx, share); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapShareNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	refreshSummaries(ctx, s.refresher, s.logger, previousMeeting, share.MeetingID)

	return share, nil
}

func (s *ShareService) Delete(ctx context.Context, id uuid.UUID) error {
	share, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.ShareRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapShareNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "share deleted", slog.String("share_id", id.String()))

	refreshSummaries(ctx, s.refresher, s.logger, share.MeetingID)

	return nil
}

func (s *ShareService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Share, error) {
	if _, err := getMember(ctx, s.MemberRepo, memberID); err != nil {
		return nil, err
	}

	shares, err := s.ShareRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return shares, nil
}

func (s *ShareService) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Share, error) {
	if _, err := getMeeting(ctx, s.MeetingRepo, meetingID); err != nil {
		return nil, err
	}

	shares, err := s.ShareRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return shares, nil
}
