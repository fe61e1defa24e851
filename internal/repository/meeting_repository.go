package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/savings-ledger/internal/domain"
)

const meetingColumns = `id, meeting_date, venue, start_time, end_time, attendance, status, notes,
	bank_balance, cash_in_hand,
	total_shares_collected, total_welfare_collected, total_loan_paid, total_loans_issued, total_fines,
	created_at, updated_at, deleted_at`

type meetingRepository struct {
	db *sqlx.DB
}

func NewMeetingRepository(db *sqlx.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		INSERT INTO meetings (id, meeting_date, venue, start_time, end_time, attendance, status, notes,
			bank_balance, cash_in_hand,
			total_shares_collected, total_welfare_collected, total_loan_paid, total_loans_issued, total_fines,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		meeting.ID,
		meeting.MeetingDate,
		meeting.Venue,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Attendance,
		meeting.Status,
		meeting.Notes,
		meeting.BankBalance,
		meeting.CashInHand,
		meeting.TotalSharesCollected,
		meeting.TotalWelfareCollected,
		meeting.TotalLoanPaid,
		meeting.TotalLoansIssued,
		meeting.TotalFines,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)

	return err
}

func (r *meetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 AND deleted_at IS NULL`

	var meeting domain.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		return nil, err
	}

	return &meeting, nil
}

func (r *meetingRepository) List(ctx context.Context, status string) ([]*domain.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE deleted_at IS NULL AND ($1 = '' OR status = $1)
		ORDER BY meeting_date DESC
	`

	var meetings []*domain.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, status); err != nil {
		return nil, err
	}

	return meetings, nil
}

func (r *meetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	query := `
		UPDATE meetings
		SET meeting_date = $2, venue = $3, start_time = $4, end_time = $5, attendance = $6, status = $7,
			notes = $8, bank_balance = $9, cash_in_hand = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		meeting.ID,
		meeting.MeetingDate,
		meeting.Venue,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Attendance,
		meeting.Status,
		meeting.Notes,
		meeting.BankBalance,
		meeting.CashInHand,
		meeting.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *meetingRepository) UpdateSummary(ctx context.Context, id uuid.UUID, summary domain.MeetingSummary) error {
	query := `
		UPDATE meetings
		SET total_shares_collected = $2, total_welfare_collected = $3, total_loan_paid = $4,
			total_loans_issued = $5, total_fines = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		id,
		summary.TotalSharesCollected,
		summary.TotalWelfareCollected,
		summary.TotalLoanPaid,
		summary.TotalLoansIssued,
		summary.TotalFines,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *meetingRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meetings SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}

	return requireRow(res)
}
