package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MeetingStatusScheduled = "scheduled"
	MeetingStatusOngoing   = "ongoing"
	MeetingStatusCompleted = "completed"
	MeetingStatusCancelled = "cancelled"
)

// Meeting represents a dated gathering of the group
type Meeting struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MeetingDate time.Time       `json:"meeting_date" db:"meeting_date"`
	Venue       string          `json:"venue" db:"venue"`
	StartTime   string          `json:"start_time" db:"start_time"`
	EndTime     string          `json:"end_time" db:"end_time"`
	Attendance  int             `json:"attendance" db:"attendance"`
	Status      string          `json:"status" db:"status"`
	Notes       string          `json:"notes" db:"notes"`
	BankBalance decimal.Decimal `json:"bank_balance" db:"bank_balance"`
	CashInHand  decimal.Decimal `json:"cash_in_hand" db:"cash_in_hand"`
	MeetingSummary
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// TotalCash is derived on read and never stored
func (m *Meeting) TotalCash() decimal.Decimal {
	return m.BankBalance.Add(m.CashInHand)
}

// MeetingSummary holds the cached per-meeting totals. Only the meeting
// aggregator writes it.
type MeetingSummary struct {
	TotalSharesCollected  decimal.Decimal `json:"total_shares_collected" db:"total_shares_collected"`
	TotalWelfareCollected decimal.Decimal `json:"total_welfare_collected" db:"total_welfare_collected"`
	TotalLoanPaid         decimal.Decimal `json:"total_loan_paid" db:"total_loan_paid"`
	TotalLoansIssued      decimal.Decimal `json:"total_loans_issued" db:"total_loans_issued"`
	TotalFines            decimal.Decimal `json:"total_fines" db:"total_fines"`
}

// Equal compares two summaries amount by amount
func (s MeetingSummary) Equal(other MeetingSummary) bool {
	return s.TotalSharesCollected.Equal(other.TotalSharesCollected) &&
		s.TotalWelfareCollected.Equal(other.TotalWelfareCollected) &&
		s.TotalLoanPaid.Equal(other.TotalLoanPaid) &&
		s.TotalLoansIssued.Equal(other.TotalLoansIssued) &&
		s.TotalFines.Equal(other.TotalFines)
}

// SummarizeMeeting derives a meeting's totals from its child records. Rows
// belonging to other meetings are ignored. TotalLoanPaid is not derived and is
// carried over from previous.
func SummarizeMeeting(meetingID uuid.UUID, shares []*Share, welfare []*Welfare, loans []*Loan, previous MeetingSummary) MeetingSummary {
	summary := MeetingSummary{
		TotalSharesCollected:  decimal.Zero,
		TotalWelfareCollected: decimal.Zero,
		TotalLoanPaid:         previous.TotalLoanPaid,
		TotalLoansIssued:      decimal.Zero,
		TotalFines:            decimal.Zero,
	}

	for _, s := range shares {
		if belongsTo(s.MeetingID, meetingID) {
			summary.TotalSharesCollected = summary.TotalSharesCollected.Add(s.Amount)
		}
	}

	for _, w := range welfare {
		if !belongsTo(w.MeetingID, meetingID) {
			continue
		}
		switch w.Type {
		case WelfareTypeContribution:
			summary.TotalWelfareCollected = summary.TotalWelfareCollected.Add(w.Amount)
		case WelfareTypeFine:
			summary.TotalFines = summary.TotalFines.Add(w.Amount)
		}
	}

	for _, l := range loans {
		if belongsTo(l.MeetingID, meetingID) && l.IsIssued() {
			summary.TotalLoansIssued = summary.TotalLoansIssued.Add(l.LoanAmount)
		}
	}

	return summary
}

func belongsTo(ref *uuid.UUID, meetingID uuid.UUID) bool {
	return ref != nil && *ref == meetingID
}

// SummaryDrift describes a meeting whose stored totals differ from its child records
type SummaryDrift struct {
	MeetingID uuid.UUID      `json:"meeting_id"`
	Stored    MeetingSummary `json:"stored"`
	Expected  MeetingSummary `json:"expected"`
	Repaired  bool           `json:"repaired"`
}

type CreateMeetingRequest struct {
	MeetingDate time.Time        `json:"meeting_date" validate:"required"`
	Venue       string           `json:"venue" validate:"max=255"`
	StartTime   string           `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime     string           `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Attendance  int              `json:"attendance" validate:"gte=0"`
	Status      string           `json:"status,omitempty" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
	Notes       string           `json:"notes,omitempty" validate:"max=2000"`
	BankBalance *decimal.Decimal `json:"bank_balance,omitempty"`
	CashInHand  *decimal.Decimal `json:"cash_in_hand,omitempty"`
}

// UpdateMeetingRequest cannot touch the summary totals
type UpdateMeetingRequest struct {
	MeetingDate *time.Time       `json:"meeting_date,omitempty"`
	Venue       *string          `json:"venue,omitempty" validate:"omitempty,max=255"`
	StartTime   *string          `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime     *string          `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Attendance  *int             `json:"attendance,omitempty" validate:"omitempty,gte=0"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	BankBalance *decimal.Decimal `json:"bank_balance,omitempty"`
	CashInHand  *decimal.Decimal `json:"cash_in_hand,omitempty"`
}

type SummaryResponse struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	MeetingSummary
	BankBalance decimal.Decimal `json:"bank_balance"`
	CashInHand  decimal.Decimal `json:"cash_in_hand"`
	TotalCash   decimal.Decimal `json:"total_cash"`
}
