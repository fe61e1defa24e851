package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
)

const loanColumns = `id, member_id, meeting_id, loan_amount, interest_rate, interest_amount, total_amount,
	amount_paid, balance, loan_date, due_date, status, purpose, notes, created_at, updated_at, deleted_at`

const loanPaymentColumns = `id, loan_id, meeting_id, member_id, amount, payment_date, payment_method, notes, created_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, meeting_id, loan_amount, interest_rate, interest_amount, total_amount,
			amount_paid, balance, loan_date, due_date, status, purpose, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.MeetingID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.InterestAmount,
		loan.TotalAmount,
		loan.AmountPaid,
		loan.Balance,
		loan.LoanDate,
		loan.DueDate,
		loan.Status,
		loan.Purpose,
		loan.Notes,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND deleted_at IS NULL`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal) error {
	query := `
		UPDATE loans
		SET meeting_id = $2, loan_amount = $3, interest_rate = $4, interest_amount = $5, total_amount = $6,
			amount_paid = $7, balance = $8, loan_date = $9, due_date = $10, status = $11, purpose = $12,
			notes = $13, updated_at = $14
		WHERE id = $1 AND deleted_at IS NULL AND amount_paid = $15
	`

	res, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MeetingID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.InterestAmount,
		loan.TotalAmount,
		loan.AmountPaid,
		loan.Balance,
		loan.LoanDate,
		loan.DueDate,
		loan.Status,
		loan.Purpose,
		loan.Notes,
		loan.UpdatedAt,
		previousPaid,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1 AND deleted_at IS NULL)`, loan.ID); err != nil {
		return err
	}
	if exists {
		return ErrStaleWrite
	}
	return sql.ErrNoRows
}

func (r *loanRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *loanRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE meeting_id = $1 AND deleted_at IS NULL
		ORDER BY loan_date, created_at
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, meetingID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE member_id = $1 AND deleted_at IS NULL
		ORDER BY loan_date, created_at
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, memberID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ApplyPayment(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal, payment *domain.LoanPayment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET amount_paid = $2, balance = $3, status = $4, updated_at = $5
		WHERE id = $1 AND amount_paid = $6 AND deleted_at IS NULL
	`,
		loan.ID,
		loan.AmountPaid,
		loan.Balance,
		loan.Status,
		loan.UpdatedAt,
		previousPaid,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleWrite
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loan_payments (`+loanPaymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		payment.ID,
		payment.LoanID,
		payment.MeetingID,
		payment.MemberID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.Notes,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	query := `
		SELECT ` + loanPaymentColumns + `
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY payment_date, created_at
	`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}
