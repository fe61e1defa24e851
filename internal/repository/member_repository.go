package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/savings-ledger/internal/domain"
)

const memberColumns = `id, name, phone, email, id_number, join_date, status, created_at, updated_at, deleted_at`

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, name, phone, email, id_number, join_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.Email,
		member.IDNumber,
		member.JoinDate,
		member.Status,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 AND deleted_at IS NULL`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, status string) ([]*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE deleted_at IS NULL AND ($1 = '' OR status = $1)
		ORDER BY name
	`

	var members []*domain.Member
	if err := r.db.SelectContext(ctx, &members, query, status); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET name = $2, phone = $3, email = $4, id_number = $5, join_date = $6, status = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.Email,
		member.IDNumber,
		member.JoinDate,
		member.Status,
		member.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (r *memberRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}

	return requireRow(res)
}

// requireRow turns an update that matched nothing into sql.ErrNoRows
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
