package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
	LoanStatusDefaulted = "defaulted"
)

// IsValidLoanStatus reports whether status is one of the loan statuses
func IsValidLoanStatus(status string) bool {
	switch status {
	case LoanStatusPending, LoanStatusApproved, LoanStatusActive, LoanStatusCompleted, LoanStatusDefaulted:
		return true
	}
	return false
}

// Loan represents a loan entity
type Loan struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	MemberID       uuid.UUID       `json:"member_id" db:"member_id"`
	MeetingID      *uuid.UUID      `json:"meeting_id,omitempty" db:"meeting_id"`
	LoanAmount     decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestAmount decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	LoanDate       time.Time       `json:"loan_date" db:"loan_date"`
	DueDate        *time.Time      `json:"due_date,omitempty" db:"due_date"`
	Status         string          `json:"status" db:"status"`
	Purpose        string          `json:"purpose" db:"purpose"`
	Notes          string          `json:"notes" db:"notes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time      `json:"-" db:"deleted_at"`
}

// IsIssued reports whether the loan counts towards a meeting's loans issued
func (l *Loan) IsIssued() bool {
	return l.DeletedAt == nil && (l.Status == LoanStatusApproved || l.Status == LoanStatusActive)
}

// LoanPayment is the audit record of a single repayment
type LoanPayment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        uuid.UUID       `json:"loan_id" db:"loan_id"`
	MeetingID     *uuid.UUID      `json:"meeting_id,omitempty" db:"meeting_id"`
	MemberID      uuid.UUID       `json:"member_id" db:"member_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Notes         string          `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	MemberID       uuid.UUID        `json:"member_id" validate:"required"`
	MeetingID      *uuid.UUID       `json:"meeting_id,omitempty"`
	LoanAmount     decimal.Decimal  `json:"loan_amount" validate:"gte=0"`
	InterestRate   *decimal.Decimal `json:"interest_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	InterestAmount *decimal.Decimal `json:"interest_amount,omitempty" validate:"omitempty,gte=0"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	AmountPaid     *decimal.Decimal `json:"amount_paid,omitempty" validate:"omitempty,gte=0"`
	LoanDate       time.Time        `json:"loan_date" validate:"required"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	Status         string           `json:"status,omitempty" validate:"omitempty,oneof=pending approved active completed defaulted"`
	Purpose        string           `json:"purpose,omitempty" validate:"max=500"`
	Notes          string           `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateLoanRequest is a partial patch; nil fields are left untouched
type UpdateLoanRequest struct {
	MeetingID    *uuid.UUID       `json:"meeting_id,omitempty"`
	LoanAmount   *decimal.Decimal `json:"loan_amount,omitempty" validate:"omitempty,gte=0"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	AmountPaid   *decimal.Decimal `json:"amount_paid,omitempty" validate:"omitempty,gte=0"`
	LoanDate     *time.Time       `json:"loan_date,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	Status       *string          `json:"status,omitempty" validate:"omitempty,oneof=pending approved active completed defaulted"`
	Purpose      *string          `json:"purpose,omitempty" validate:"omitempty,max=500"`
	Notes        *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod string          `json:"payment_method,omitempty" validate:"max=50"`
	MeetingID     *uuid.UUID      `json:"meeting_id,omitempty"`
	Notes         string          `json:"notes,omitempty" validate:"max=2000"`
}

type RecordPaymentResponse struct {
	Loan    *Loan        `json:"loan"`
	Payment *LoanPayment `json:"payment"`
}
