package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Share is one capital contribution by a member
type Share struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	MemberID        uuid.UUID       `json:"member_id" db:"member_id"`
	MeetingID       *uuid.UUID      `json:"meeting_id,omitempty" db:"meeting_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	Reference       string          `json:"reference" db:"reference"`
	Notes           string          `json:"notes" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateShareRequest struct {
	MemberID        uuid.UUID       `json:"member_id" validate:"required"`
	MeetingID       *uuid.UUID      `json:"meeting_id,omitempty"`
	Amount          decimal.Decimal `json:"amount" validate:"gte=0"`
	TransactionDate time.Time       `json:"transaction_date"`
	PaymentMethod   string          `json:"payment_method,omitempty" validate:"max=50"`
	Reference       string          `json:"reference,omitempty" validate:"max=100"`
	Notes           string          `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateShareRequest struct {
	MeetingID       *uuid.UUID       `json:"meeting_id,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gte=0"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
	PaymentMethod   *string          `json:"payment_method,omitempty" validate:"omitempty,max=50"`
	Reference       *string          `json:"reference,omitempty" validate:"omitempty,max=100"`
	Notes           *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
