package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/savings-ledger/internal/domain"
)

const shareColumns = `id, member_id, meeting_id, amount, transaction_date, payment_method, reference, notes, created_at, updated_at`

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *domain.Share) error {
	query := `
		INSERT INTO shares (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		share.ID,
		share.MemberID,
		share.MeetingID,
		share.Amount,
		share.TransactionDate,
		share.PaymentMethod,
		share.Reference,
		share.Notes,
		share.CreatedAt,
		share.UpdatedAt,
	)

	return err
}

func (r *shareRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Share, error) {
	var share domain.Share
	if err := r.db.GetContext(ctx, &share, `SELECT `+shareColumns+` FROM shares WHERE id = $1`, id); err != nil {
		return nil, err
	}

	return &share, nil
}

func (r *shareRepository) Update(ctx context.Context, share *domain.Share) error {
	query := `
		UPDATE shares
		SET meeting_id = $2, amount = $3, transaction_date = $4, payment_method = $5, reference = $6,
			notes = $7, updated_at = $8
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		share.ID,
		share.MeetingID,
		share.Amount,
		share.TransactionDate,
		share.PaymentMethod,
		share.Reference,
		share.Notes,
		share.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *shareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *shareRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE meeting_id = $1 ORDER BY transaction_date, created_at`

	var shares []*domain.Share
	if err := r.db.SelectContext(ctx, &shares, query, meetingID); err != nil {
		return nil, err
	}

	return shares, nil
}

func (r *shareRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE member_id = $1 ORDER BY transaction_date, created_at`

	var shares []*domain.Share
	if err := r.db.SelectContext(ctx, &shares, query, memberID); err != nil {
		return nil, err
	}

	return shares, nil
}
