package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
)

// ErrStaleWrite is returned when a conditional update finds the row changed since it was read
var ErrStaleWrite = errors.New("row changed since it was read")

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a live (not soft-deleted) member
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// List returns live members, optionally filtered by status
	List(ctx context.Context, status string) ([]*domain.Member, error)

	Update(ctx context.Context, member *domain.Member) error

	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MeetingRepository defines the interface for meeting data operations
type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)

	List(ctx context.Context, status string) ([]*domain.Meeting, error)

	// Update writes the descriptive fields only, never the summary totals
	Update(ctx context.Context, meeting *domain.Meeting) error

	// UpdateSummary writes the summary totals only
	UpdateSummary(ctx context.Context, id uuid.UUID, summary domain.MeetingSummary) error

	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ShareRepository defines the interface for share data operations
type ShareRepository interface {
	Create(ctx context.Context, share *domain.Share) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Share, error)

	Update(ctx context.Context, share *domain.Share) error

	Delete(ctx context.Context, id uuid.UUID) error

	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Share, error)

	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Share, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a live (not soft-deleted) loan
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update writes the loan only if its amount_paid still equals
	// previousPaid. A changed row gives ErrStaleWrite, a missing one sql.ErrNoRows.
	Update(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal) error

	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Loan, error)

	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)

	// ApplyPayment stores the new paid/balance/status of loan and inserts the
	// payment row in one transaction. The loan row is only updated if its
	// amount_paid still equals previousPaid, otherwise ErrStaleWrite is returned
	// and nothing is written.
	ApplyPayment(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal, payment *domain.LoanPayment) error

	ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error)
}

// WelfareRepository defines the interface for welfare data operations
type WelfareRepository interface {
	Create(ctx context.Context, welfare *domain.Welfare) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Welfare, error)

	Update(ctx context.Context, welfare *domain.Welfare) error

	Delete(ctx context.Context, id uuid.UUID) error

	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Welfare, error)

	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Welfare, error)

	// SumContributions totals the member's contribution-type amounts
	SumContributions(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
}
