package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string // argon2id
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the caller identity of u.
func (u *User) Identity() Identity {
	return Identity{Username: u.Username, Role: u.Role}
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error // ErrUsernameTaken on duplicates
	GetByUsername(ctx context.Context, username string) (*User, error)
}
