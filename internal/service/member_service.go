package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
)

type MemberService struct {
	MemberRepo repository.MemberRepository
	logger     *slog.Logger
}

func NewMemberService(memberRepo repository.MemberRepository, logger *slog.Logger) *MemberService {
	return &MemberService{
		MemberRepo: memberRepo,
		logger:     logger.With(slog.String("component", "member_service")),
	}
}

func (s *MemberService) Create(ctx context.Context, request *domain.CreateMemberRequest) (*domain.Member, error) {
	name := strings.TrimSpace(request.Name)
	if name == "" {
		return nil, customError.WrapValidation("name", "is required")
	}

	status := request.Status
	if status == "" {
		status = domain.MemberStatusActive
	}

	now := time.Now().UTC()
	joinDate := request.JoinDate
	if joinDate.IsZero() {
		joinDate = now.Truncate(24 * time.Hour)
	}

	member := &domain.Member{
		ID:        uuid.New(),
		Name:      name,
		Phone:     request.Phone,
		Email:     request.Email,
		IDNumber:  request.IDNumber,
		JoinDate:  joinDate,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.MemberRepo.Create(ctx, member); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "member created", slog.String("member_id", member.ID.String()))

	return member, nil
}

func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return getMember(ctx, s.MemberRepo, id)
}

func (s *MemberService) List(ctx context.Context, status string) ([]*domain.Member, error) {
	members, err := s.MemberRepo.List(ctx, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return members, nil
}

func (s *MemberService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateMemberRequest) (*domain.Member, error) {
	member, err := getMember(ctx, s.MemberRepo, id)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		if name == "" {
			return nil, customError.WrapValidation("name", "must not be empty")
		}
		member.Name = name
	}
	if request.Phone != nil {
		member.Phone = *request.Phone
	}
	if request.Email != nil {
		member.Email = *request.Email
	}
	if request.IDNumber != nil {
		member.IDNumber = *request.IDNumber
	}
	if request.JoinDate != nil {
		member.JoinDate = *request.JoinDate
	}
	if request.Status != nil {
		member.Status = *request.Status
	}
	member.UpdatedAt = time.Now().UTC()

	if err := s.MemberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return member, nil
}

// Delete soft-deletes the member; their records stay in place
func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.MemberRepo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMemberNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "member deleted", slog.String("member_id", id.String()))
	return nil
}
