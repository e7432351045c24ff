package repository

import (
	"context"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
)

// FeedbackRepository defines persistence operations for likes and comments.
type FeedbackRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, fb *domain.Feedback) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Feedback, error)
	ListByPost(ctx context.Context, postID int64, d query.Directives) ([]domain.Feedback, error)

	// AllByPost returns every feedback entry for a post, oldest first,
	// for composition into a single post read.
	AllByPost(ctx context.Context, postID int64) ([]domain.Feedback, error)

	// HasLike reports whether the user already liked the post.
	HasLike(ctx context.Context, userID, postID int64) (bool, error)
	Update(ctx context.Context, fb *domain.Feedback) error
	Delete(ctx context.Context, id int64) error
}
