package repository

import (
	"context"

	"blogmanity/internal/domain"
	"blogmanity/internal/query"
)

// PostRepository defines persistence operations for Post entities. Reads
// compose the author display fields explicitly at query time.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)

	// List applies the directive set; onlyValidated restricts the result
	// to admin-approved posts for anonymous and non-admin callers.
	List(ctx context.Context, d query.Directives, onlyValidated bool) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
}
