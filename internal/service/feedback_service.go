package service

import (
	"context"
	"errors"
	"strings"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

// ErrFeedbackNotFound is returned for operations on a missing like/comment.
var ErrFeedbackNotFound = apperr.NotFound("This like or comment does not exist")

// FeedbackService manages likes and comments attached to posts.
type FeedbackService interface {
	ListForPost(ctx context.Context, postID int64, d query.Directives) ([]domain.Feedback, error)
	Create(ctx context.Context, userID, postID int64, fbType domain.FeedbackType, content string) (*domain.Feedback, error)
	Get(ctx context.Context, id int64) (*domain.Feedback, error)
	Update(ctx context.Context, actor *domain.User, id int64, content string) (*domain.Feedback, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	posts    repository.PostRepository
}

func NewFeedbackService(feedback repository.FeedbackRepository, posts repository.PostRepository) FeedbackService {
	return &feedbackService{
		feedback: feedback,
		posts:    posts,
	}
}

func (s *feedbackService) ListForPost(ctx context.Context, postID int64, d query.Directives) ([]domain.Feedback, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.feedback.ListByPost(ctx, postID, d)
}

func (s *feedbackService) Create(ctx context.Context, userID, postID int64, fbType domain.FeedbackType, content string) (*domain.Feedback, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	switch fbType {
	case domain.FeedbackLike:
		liked, err := s.feedback.HasLike(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		if liked {
			return nil, apperr.BadRequest("You already liked this post")
		}
		content = "" // likes never carry content
	case domain.FeedbackComment:
		if strings.TrimSpace(content) == "" {
			return nil, apperr.BadRequest("Comment must have a content")
		}
	default:
		return nil, apperr.BadRequest("feedback must have a type")
	}

	fb := &domain.Feedback{
		UserID:  userID,
		PostID:  postID,
		Type:    fbType,
		Content: content,
	}
	if _, err := s.feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	return s.feedback.Get(ctx, fb.ID)
}

func (s *feedbackService) Get(ctx context.Context, id int64) (*domain.Feedback, error) {
	fb, err := s.feedback.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return fb, nil
}

func (s *feedbackService) Update(ctx context.Context, actor *domain.User, id int64, content string) (*domain.Feedback, error) {
	fb, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fb.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("You are not allowed to perform this action")
	}

	if fb.Type == domain.FeedbackLike {
		content = ""
	}
	fb.Content = content

	if err := s.feedback.Update(ctx, fb); err != nil {
		return nil, err
	}
	return s.feedback.Get(ctx, id)
}

func (s *feedbackService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	fb, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if fb.UserID != actor.ID && actor.Role != domain.RoleAdmin {
		return apperr.Forbidden("You are not allowed to perform this action")
	}

	return s.feedback.Delete(ctx, id)
}
