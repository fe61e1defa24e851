package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusSuspended = "suspended"
)

// Member is a participant in the savings group
type Member struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Phone     string     `json:"phone" db:"phone"`
	Email     string     `json:"email" db:"email"`
	IDNumber  string     `json:"id_number" db:"id_number"`
	JoinDate  time.Time  `json:"join_date" db:"join_date"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type CreateMemberRequest struct {
	Name     string    `json:"name" validate:"required,max=255"`
	Phone    string    `json:"phone,omitempty" validate:"max=32"`
	Email    string    `json:"email,omitempty" validate:"omitempty,email"`
	IDNumber string    `json:"id_number,omitempty" validate:"max=64"`
	JoinDate time.Time `json:"join_date"`
	Status   string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
}

type UpdateMemberRequest struct {
	Name     *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email    *string    `json:"email,omitempty" validate:"omitempty,email"`
	IDNumber *string    `json:"id_number,omitempty" validate:"omitempty,max=64"`
	JoinDate *time.Time `json:"join_date,omitempty"`
	Status   *string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
}
