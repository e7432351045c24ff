package repository

import (
	"context"
	"time"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
)

// UserRepository defines persistence operations for User entities. Password
// and reset-token mutations are single-statement read-modify-write updates so
// a concurrent login and reset redemption on the same account cannot lose
// writes.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, d query.Directives) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error

	// SetPassword stores a new hash, records changedAt and clears any
	// pending reset in the same statement.
	SetPassword(ctx context.Context, id int64, hash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error

	// Delete removes the user and, through foreign keys, their pocket,
	// posts and feedback.
	Delete(ctx context.Context, id int64) error
}
