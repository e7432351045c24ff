package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

// ErrPostNotFound is returned for operations on a missing post.
var ErrPostNotFound = apperr.NotFound("This post does not exist")

// PostInput carries the fields accepted when authoring a post.
type PostInput struct {
	Title       string
	Tags        []string
	Description string
	Content     string
}

// PostUpdate carries a partial post update; nil fields stay untouched.
// Validated is honored only for admin actors.
type PostUpdate struct {
	Title       *string
	Tags        []string
	Description *string
	Photo       *string
	Content     *string
	Validated   *bool
}

// PostService coordinates post authoring and the ownership rules around
// mutation.
type PostService interface {
	Create(ctx context.Context, userID int64, in PostInput) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, d query.Directives, adminView bool) ([]domain.Post, error)
	ListMine(ctx context.Context, userID int64) ([]domain.Post, error)
	Update(ctx context.Context, actor *domain.User, id int64, in PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}

type postService struct {
	posts    repository.PostRepository
	feedback repository.FeedbackRepository
}

func NewPostService(posts repository.PostRepository, feedback repository.FeedbackRepository) PostService {
	return &postService{
		posts:    posts,
		feedback: feedback,
	}
}

func (s *postService) Create(ctx context.Context, userID int64, in PostInput) (*domain.Post, error) {
	if len(in.Tags) == 0 {
		return nil, apperr.BadRequest("Post must have a tag")
	}

	post := &domain.Post{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Tags:        in.Tags,
		Description: in.Description,
		Content:     in.Content,
		ReadTime:    readTime(in.Content),
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, post.ID)
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	feedback, err := s.feedback.AllByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Feedback = feedback
	return post, nil
}

func (s *postService) List(ctx context.Context, d query.Directives, adminView bool) ([]domain.Post, error) {
	return s.posts.List(ctx, d, !adminView)
}

func (s *postService) ListMine(ctx context.Context, userID int64) ([]domain.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

func (s *postService) Update(ctx context.Context, actor *domain.User, id int64, in PostUpdate) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("You can't update this post")
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Tags != nil {
		if len(in.Tags) == 0 {
			return nil, apperr.BadRequest("Post must have a tag")
		}
		post.Tags = in.Tags
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Photo != nil {
		post.Photo = *in.Photo
	}
	if in.Content != nil {
		post.Content = *in.Content
		post.ReadTime = readTime(post.Content)
	}
	// only an admin can approve a post
	if in.Validated != nil && actor.Role == domain.RoleAdmin {
		post.Validated = *in.Validated
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		return apperr.Forbidden("You can't delete this post")
	}

	// feedback and pocket references cascade with the post
	return s.posts.Delete(ctx, id)
}

// readTime estimates minutes to read at ~200 words per minute, never below 1.
func readTime(content string) int {
	words := len(strings.Fields(content))
	rt := int(math.Round(float64(words) / 200))
	if rt < 1 {
		rt = 1
	}
	return rt
}
