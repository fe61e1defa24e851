package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
	customError "github.com/segyhp/savings-ledger/pkg/errors"
	"github.com/segyhp/savings-ledger/pkg/utils"
)

// SummaryRefresher recomputes a meeting's cached totals. MeetingService is the
// only implementation; the ledgers call it after every committed write that
// touches a meeting's child records.
type SummaryRefresher interface {
	Recalculate(ctx context.Context, meetingID uuid.UUID) (*domain.Meeting, error)
}

// refreshSummaries recalculates each distinct, non-nil meeting once. The
// triggering write is already committed, so failures are logged and swallowed.
func refreshSummaries(ctx context.Context, refresher SummaryRefresher, logger *slog.Logger, meetingIDs ...*uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(meetingIDs))
	for _, id := range meetingIDs {
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}

		_, err := refresher.Recalculate(ctx, *id)
		if customError.Code(err) == customError.ErrCodeMeetingNotFound {
			// soft-deleted meetings keep their children but are no longer summarised
			logger.DebugContext(ctx, "meeting summary refresh skipped",
				slog.String("meeting_id", id.String()))
			continue
		}
		if err != nil {
			logger.ErrorContext(ctx, "meeting summary refresh failed",
				slog.String("meeting_id", id.String()),
				slog.Any("error", err))
		}
	}
}

func getMember(ctx context.Context, repo repository.MemberRepository, id uuid.UUID) (*domain.Member, error) {
	member, err := repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapMemberNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return member, nil
}

func getMeeting(ctx context.Context, repo repository.MeetingRepository, id uuid.UUID) (*domain.Meeting, error) {
	meeting, err := repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapMeetingNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return meeting, nil
}

// checkCents rejects an amount finer than one cent. Nil means not provided.
func checkCents(field string, amount *decimal.Decimal) error {
	if amount != nil && !utils.IsCents(*amount) {
		return customError.WrapValidation(field, "must have at most 2 decimal places")
	}
	return nil
}

// checkMemberRef validates a member_id carried in a request body
func checkMemberRef(ctx context.Context, repo repository.MemberRepository, id uuid.UUID) error {
	if id == uuid.Nil {
		return customError.WrapValidation("member_id", "is required")
	}
	if _, err := getMember(ctx, repo, id); err != nil {
		if errors.Is(err, customError.ErrMemberNotFound) {
			return customError.WrapValidation("member_id", "member "+id.String()+" does not exist")
		}
		return err
	}
	return nil
}

// checkMeetingRef validates an optional meeting_id carried in a request body
func checkMeetingRef(ctx context.Context, repo repository.MeetingRepository, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := getMeeting(ctx, repo, *id); err != nil {
		if errors.Is(err, customError.ErrMeetingNotFound) {
			return customError.WrapValidation("meeting_id", "meeting "+id.String()+" does not exist")
		}
		return err
	}
	return nil
}
