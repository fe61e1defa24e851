package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/config"
	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
	"github.com/segyhp/savings-ledger/pkg/utils"
)

// LoanService keeps interest, total, balance and status of every loan consistent
type LoanService struct {
	LoanRepo    repository.LoanRepository
	MemberRepo  repository.MemberRepository
	MeetingRepo repository.MeetingRepository
	refresher   SummaryRefresher
	config      *config.Config
	logger      *slog.Logger
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	memberRepo repository.MemberRepository,
	meetingRepo repository.MeetingRepository,
	refresher SummaryRefresher,
	config *config.Config,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		LoanRepo:    loanRepo,
		MemberRepo:  memberRepo,
		MeetingRepo: meetingRepo,
		refresher:   refresher,
		config:      config,
		logger:      logger.With(slog.String("component", "loan_service")),
	}
}

// Create issues a new loan with all derived amounts populated
func (s *LoanService) Create(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	rate := s.config.GetDefaultInterestRate()
	if request.InterestRate != nil {
		rate = *request.InterestRate
	}

	if request.LoanAmount.IsNegative() {
		return nil, customError.WrapValidation("loan_amount", "must be greater than or equal to 0")
	}
	for _, amount := range []struct {
		field string
		value *decimal.Decimal
	}{
		{"loan_amount", &request.LoanAmount},
		{"interest_amount", request.InterestAmount},
		{"total_amount", request.TotalAmount},
		{"amount_paid", request.AmountPaid},
	} {
		if err := checkCents(amount.field, amount.value); err != nil {
			return nil, err
		}
	}
	if !utils.IsPercentage(rate) {
		return nil, customError.WrapValidation("interest_rate", "must be between 0 and 100")
	}
	if request.DueDate != nil && request.DueDate.Before(request.LoanDate) {
		return nil, customError.WrapValidation("due_date", "must not be before loan_date")
	}

	status := request.Status
	if status == "" {
		status = domain.LoanStatusPending
	}
	if !domain.IsValidLoanStatus(status) {
		return nil, customError.WrapValidation("status", "unknown loan status "+status)
	}

	amountPaid := decimal.Zero
	if request.AmountPaid != nil {
		if request.AmountPaid.IsNegative() {
			return nil, customError.WrapValidation("amount_paid", "must be greater than or equal to 0")
		}
		amountPaid = *request.AmountPaid
	}

	if err := checkMemberRef(ctx, s.MemberRepo, request.MemberID); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
		return nil, err
	}

	// Interest and total are derived unless the caller supplied them
	interest := utils.CalculateInterest(request.LoanAmount, rate)
	if request.InterestAmount != nil {
		interest = *request.InterestAmount
	}
	total := utils.CalculateTotal(request.LoanAmount, interest)
	if request.TotalAmount != nil {
		total = *request.TotalAmount
	}

	balance := utils.CalculateBalance(total, amountPaid)

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:             uuid.New(),
		MemberID:       request.MemberID,
		MeetingID:      request.MeetingID,
		LoanAmount:     request.LoanAmount,
		InterestRate:   rate,
		InterestAmount: interest,
		TotalAmount:    total,
		AmountPaid:     amountPaid,
		Balance:        balance,
		LoanDate:       request.LoanDate,
		DueDate:        request.DueDate,
		Status:         status,
		Purpose:        request.Purpose,
		Notes:          request.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyStatusRule(loan)

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "loan created",
		slog.String("loan_id", loan.ID.String()),
		slog.String("member_id", loan.MemberID.String()),
		slog.String("total_amount", loan.TotalAmount.String()),
		slog.String("status", loan.Status))

	refreshSummaries(ctx, s.refresher, s.logger, loan.MeetingID)

	return loan, nil
}

func (s *LoanService) Get(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// Update applies a partial patch and recomputes the derived fields
func (s *LoanService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateLoanRequest) (*domain.Loan, error) {
	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousMeeting := loan.MeetingID
	previousPaid := loan.AmountPaid

	if err := checkCents("loan_amount", request.LoanAmount); err != nil {
		return nil, err
	}
	if err := checkCents("amount_paid", request.AmountPaid); err != nil {
		return nil, err
	}

	recompute := false
	if request.LoanAmount != nil {
		if request.LoanAmount.IsNegative() {
			return nil, customError.WrapValidation("loan_amount", "must be greater than or equal to 0")
		}
		loan.LoanAmount = *request.LoanAmount
		recompute = true
	}
	if request.InterestRate != nil {
		if !utils.IsPercentage(*request.InterestRate) {
			return nil, customError.WrapValidation("interest_rate", "must be between 0 and 100")
		}
		loan.InterestRate = *request.InterestRate
		recompute = true
	}
	if request.AmountPaid != nil {
		if request.AmountPaid.IsNegative() {
			return nil, customError.WrapValidation("amount_paid", "must be greater than or equal to 0")
		}
		loan.AmountPaid = *request.AmountPaid
	}
	if request.LoanDate != nil {
		loan.LoanDate = *request.LoanDate
	}
	if request.DueDate != nil {
		loan.DueDate = request.DueDate
	}
	if loan.DueDate != nil && loan.DueDate.Before(loan.LoanDate) {
		return nil, customError.WrapValidation("due_date", "must not be before loan_date")
	}
	if request.Status != nil {
		if !domain.IsValidLoanStatus(*request.Status) {
			return nil, customError.WrapValidation("status", "unknown loan status "+*request.Status)
		}
		loan.Status = *request.Status
	}
	if request.Purpose != nil {
		loan.Purpose = *request.Purpose
	}
	if request.Notes != nil {
		loan.Notes = *request.Notes
	}
	if request.MeetingID != nil {
		if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
			return nil, err
		}
		loan.MeetingID = request.MeetingID
	}

	if recompute {
		loan.InterestAmount = utils.CalculateInterest(loan.LoanAmount, loan.InterestRate)
		loan.TotalAmount = utils.CalculateTotal(loan.LoanAmount, loan.InterestAmount)
	}
	loan.Balance = utils.CalculateBalance(loan.TotalAmount, loan.AmountPaid)
	applyStatusRule(loan)
	loan.UpdatedAt = time.Now().UTC()

	if err := s.LoanRepo.Update(ctx, loan, previousPaid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		if errors.Is(err, repository.ErrStaleWrite) {
			s.logger.WarnContext(ctx, "loan update lost a concurrent payment",
				slog.String("loan_id", loan.ID.String()))
			return nil, customError.WrapConcurrentUpdate(loan.ID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "loan updated",
		slog.String("loan_id", loan.ID.String()),
		slog.String("balance", loan.Balance.String()),
		slog.String("status", loan.Status))

	refreshSummaries(ctx, s.refresher, s.logger, previousMeeting, loan.MeetingID)

	return loan, nil
}

// applyStatusRule keeps status consistent with balance on create and update:
// a settled loan is completed, and a completed loan that owes money becomes active.
func applyStatusRule(loan *domain.Loan) {
	settled := utils.IsSettled(loan.Balance)
	switch {
	case settled && loan.Status != domain.LoanStatusCompleted:
		loan.Status = domain.LoanStatusCompleted
	case !settled && loan.Status == domain.LoanStatusCompleted:
		loan.Status = domain.LoanStatusActive
	}
}

// RecordPayment applies a repayment and stores its audit row atomically
func (s *LoanService) RecordPayment(ctx context.Context, id uuid.UUID, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("amount", "must be greater than 0")
	}
	if err := checkCents("amount", &request.Amount); err != nil {
		return nil, err
	}

	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if excess := utils.Excess(request.Amount, loan.Balance); excess.IsPositive() {
		return nil, customError.WrapPaymentExceedsBalance(
			request.Amount.StringFixed(2),
			loan.Balance.StringFixed(2),
			excess.StringFixed(2),
		)
	}

	if err := checkMeetingRef(ctx, s.MeetingRepo, request.MeetingID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paymentDate := request.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	previousPaid := loan.AmountPaid
	updated := *loan
	updated.AmountPaid = previousPaid.Add(request.Amount)
	updated.Balance = utils.CalculateBalance(updated.TotalAmount, updated.AmountPaid)
	if utils.IsSettled(updated.Balance) {
		updated.Status = domain.LoanStatusCompleted
	}
	updated.UpdatedAt = now

	payment := &domain.LoanPayment{
		ID:            uuid.New(),
		LoanID:        loan.ID,
		MeetingID:     request.MeetingID,
		MemberID:      loan.MemberID,
		Amount:        request.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: request.PaymentMethod,
		Notes:         request.Notes,
		CreatedAt:     now,
	}

	if err := s.LoanRepo.ApplyPayment(ctx, &updated, previousPaid, payment); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			s.logger.WarnContext(ctx, "loan payment lost a concurrent update",
				slog.String("loan_id", loan.ID.String()))
			return nil, customError.WrapConcurrentUpdate(loan.ID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "loan payment recorded",
		slog.String("loan_id", loan.ID.String()),
		slog.String("amount", request.Amount.String()),
		slog.String("balance", updated.Balance.String()),
		slog.String("status", updated.Status))

	// a payment that completes the loan removes it from loans issued
	refreshSummaries(ctx, s.refresher, s.logger, loan.MeetingID)

	return &domain.RecordPaymentResponse{
		Loan:    &updated,
		Payment: payment,
	}, nil
}

// Delete soft-deletes the loan
func (s *LoanService) Delete(ctx context.Context, id uuid.UUID) error {
	loan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.LoanRepo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLoanNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "loan deleted", slog.String("loan_id", id.String()))

	refreshSummaries(ctx, s.refresher, s.logger, loan.MeetingID)

	return nil
}

func (s *LoanService) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	if _, err := getMember(ctx, s.MemberRepo, memberID); err != nil {
		return nil, err
	}

	loans, err := s.LoanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Loan, error) {
	if _, err := getMeeting(ctx, s.MeetingRepo, meetingID); err != nil {
		return nil, err
	}

	loans, err := s.LoanRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListPayments returns the audit trail of a loan, oldest first
func (s *LoanService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	if _, err := s.Get(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.LoanRepo.ListPayments(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}
