package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	WelfareTypeContribution = "contribution"
	WelfareTypeBenefit      = "benefit"
	WelfareTypeFine         = "fine"
)

// IsValidWelfareType reports whether t is a welfare transaction type
func IsValidWelfareType(t string) bool {
	return t == WelfareTypeContribution || t == WelfareTypeBenefit || t == WelfareTypeFine
}

// Welfare is a welfare fund transaction. CumulativeAmount is the member's
// running contribution total at the time a contribution was recorded.
type Welfare struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	MemberID         uuid.UUID       `json:"member_id" db:"member_id"`
	MeetingID        *uuid.UUID      `json:"meeting_id,omitempty" db:"meeting_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	CumulativeAmount decimal.Decimal `json:"cumulative_amount" db:"cumulative_amount"`
	TransactionDate  time.Time       `json:"transaction_date" db:"transaction_date"`
	Type             string          `json:"type" db:"type"`
	Description      string          `json:"description" db:"description"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateWelfareRequest struct {
	MemberID        uuid.UUID       `json:"member_id" validate:"required"`
	MeetingID       *uuid.UUID      `json:"meeting_id,omitempty"`
	Amount          decimal.Decimal `json:"amount" validate:"gte=0"`
	TransactionDate time.Time       `json:"transaction_date"`
	Type            string          `json:"type" validate:"required,oneof=contribution benefit fine"`
	Description     string          `json:"description,omitempty" validate:"max=2000"`
}

type UpdateWelfareRequest struct {
	MeetingID       *uuid.UUID       `json:"meeting_id,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gte=0"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
	Type            *string          `json:"type,omitempty" validate:"omitempty,oneof=contribution benefit fine"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
}
