package repository

import (
	"context"

	"blogmanity/internal/domain"
)

// PocketRepository defines persistence operations for the per-user bookmark
// collection.
type PocketRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, userID int64) (int64, error)
	GetByUser(ctx context.Context, userID int64) (*domain.Pocket, error)
	Contains(ctx context.Context, pocketID, postID int64) (bool, error)
	AddPost(ctx context.Context, pocketID, postID int64) error
	RemovePost(ctx context.Context, pocketID, postID int64) error
}
