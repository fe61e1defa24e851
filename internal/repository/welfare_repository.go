package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
)

const welfareColumns = `id, member_id, meeting_id, amount, cumulative_amount, transaction_date, type, description, created_at, updated_at`

type welfareRepository struct {
	db *sqlx.DB
}

func NewWelfareRepository(db *sqlx.DB) WelfareRepository {
	return &welfareRepository{db: db}
}

func (r *welfareRepository) Create(ctx context.Context, welfare *domain.Welfare) error {
	query := `
		INSERT INTO welfare (` + welfareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		welfare.ID,
		welfare.MemberID,
		welfare.MeetingID,
		welfare.Amount,
		welfare.CumulativeAmount,
		welfare.TransactionDate,
		welfare.Type,
		welfare.Description,
		welfare.CreatedAt,
		welfare.UpdatedAt,
	)

	return err
}

func (r *welfareRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Welfare, error) {
	var welfare domain.Welfare
	if err := r.db.GetContext(ctx, &welfare, `SELECT `+welfareColumns+` FROM welfare WHERE id = $1`, id); err != nil {
		return nil, err
	}

	return &welfare, nil
}

// Update leaves cumulative_amount as it was recorded at creation
func (r *welfareRepository) Update(ctx context.Context, welfare *domain.Welfare) error {
	query := `
		UPDATE welfare
		SET meeting_id = $2, amount = $3, transaction_date = $4, type = $5, description = $6, updated_at = $7
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		welfare.ID,
		welfare.MeetingID,
		welfare.Amount,
		welfare.TransactionDate,
		welfare.Type,
		welfare.Description,
		welfare.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *welfareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM welfare WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *welfareRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Welfare, error) {
	query := `SELECT ` + welfareColumns + ` FROM welfare WHERE meeting_id = $1 ORDER BY transaction_date, created_at`

	var records []*domain.Welfare
	if err := r.db.SelectContext(ctx, &records, query, meetingID); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *welfareRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Welfare, error) {
	query := `SELECT ` + welfareColumns + ` FROM welfare WHERE member_id = $1 ORDER BY transaction_date, created_at`

	var records []*domain.Welfare
	if err := r.db.SelectContext(ctx, &records, query, memberID); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *welfareRepository) SumContributions(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM welfare
		WHERE member_id = $1 AND type = 'contribution'
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, memberID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
