package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ref(id uuid.UUID) *uuid.UUID { return &id }

func TestSummarizeMeeting(t *testing.T) {
	meetingID := uuid.New()
	otherMeeting := uuid.New()
	memberID := uuid.New()
	deletedAt := time.Now()

	shares := []*Share{
		{MemberID: memberID, MeetingID: ref(meetingID), Amount: decimal.NewFromInt(500)},
		{MemberID: memberID, MeetingID: ref(meetingID), Amount: decimal.NewFromInt(300)},
		{MemberID: memberID, MeetingID: ref(otherMeeting), Amount: decimal.NewFromInt(1000)},
		{MemberID: memberID, Amount: decimal.NewFromInt(70)},
	}
	welfare := []*Welfare{
		{MeetingID: ref(meetingID), Type: WelfareTypeContribution, Amount: decimal.NewFromInt(200)},
		{MeetingID: ref(meetingID), Type: WelfareTypeContribution, Amount: decimal.NewFromInt(150)},
		{MeetingID: ref(meetingID), Type: WelfareTypeFine, Amount: decimal.NewFromInt(20)},
		{MeetingID: ref(meetingID), Type: WelfareTypeBenefit, Amount: decimal.NewFromInt(400)},
	}
	loans := []*Loan{
		{MeetingID: ref(meetingID), Status: LoanStatusActive, LoanAmount: decimal.NewFromInt(1000)},
		{MeetingID: ref(meetingID), Status: LoanStatusApproved, LoanAmount: decimal.NewFromInt(600)},
		{MeetingID: ref(meetingID), Status: LoanStatusPending, LoanAmount: decimal.NewFromInt(900)},
		{MeetingID: ref(meetingID), Status: LoanStatusCompleted, LoanAmount: decimal.NewFromInt(800)},
		{MeetingID: ref(meetingID), Status: LoanStatusActive, LoanAmount: decimal.NewFromInt(50), DeletedAt: &deletedAt},
	}
	previous := MeetingSummary{TotalLoanPaid: decimal.NewFromInt(42), TotalSharesCollected: decimal.NewFromInt(9999)}

	summary := SummarizeMeeting(meetingID, shares, welfare, loans, previous)

	assert.True(t, summary.TotalSharesCollected.Equal(decimal.NewFromInt(800)), "shares: %v", summary.TotalSharesCollected)
	assert.True(t, summary.TotalWelfareCollected.Equal(decimal.NewFromInt(350)), "welfare: %v", summary.TotalWelfareCollected)
	assert.True(t, summary.TotalFines.Equal(decimal.NewFromInt(20)), "fines: %v", summary.TotalFines)
	assert.True(t, summary.TotalLoansIssued.Equal(decimal.NewFromInt(1600)), "loans: %v", summary.TotalLoansIssued)
	assert.True(t, summary.TotalLoanPaid.Equal(decimal.NewFromInt(42)), "loan paid must be carried over")
}

func TestSummarizeMeeting_NoChildren(t *testing.T) {
	summary := SummarizeMeeting(uuid.New(), nil, nil, nil, MeetingSummary{})

	assert.True(t, summary.TotalSharesCollected.IsZero())
	assert.True(t, summary.TotalWelfareCollected.IsZero())
	assert.True(t, summary.TotalFines.IsZero())
	assert.True(t, summary.TotalLoansIssued.IsZero())
}

func TestSummarizeMeeting_Idempotent(t *testing.T) {
	meetingID := uuid.New()
	shares := []*Share{{MeetingID: ref(meetingID), Amount: decimal.RequireFromString("12.34")}}
	loans := []*Loan{{MeetingID: ref(meetingID), Status: LoanStatusActive, LoanAmount: decimal.NewFromInt(10)}}

	first := SummarizeMeeting(meetingID, shares, nil, loans, MeetingSummary{})
	second := SummarizeMeeting(meetingID, shares, nil, loans, first)

	assert.True(t, first.Equal(second))
}

func TestMeetingTotalCash(t *testing.T) {
	m := &Meeting{BankBalance: decimal.RequireFromString("1500.50"), CashInHand: decimal.RequireFromString("49.50")}
	assert.True(t, m.TotalCash().Equal(decimal.NewFromInt(1550)))
}

func TestLoanIsIssued(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Loan{Status: LoanStatusActive}).IsIssued())
	assert.True(t, (&Loan{Status: LoanStatusApproved}).IsIssued())
	assert.False(t, (&Loan{Status: LoanStatusPending}).IsIssued())
	assert.False(t, (&Loan{Status: LoanStatusDefaulted}).IsIssued())
	assert.False(t, (&Loan{Status: LoanStatusActive, DeletedAt: &now}).IsIssued())
}

func TestIsValidStatusHelpers(t *testing.T) {
	assert.True(t, IsValidLoanStatus(LoanStatusCompleted))
	assert.False(t, IsValidLoanStatus("closed"))
	assert.True(t, IsValidWelfareType(WelfareTypeFine))
	assert.False(t, IsValidWelfareType("donation"))
}
