package service

import (
	"context"
	"errors"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/repository"
)

// PocketService manages the per-user bookmark collection.
type PocketService interface {
	Get(ctx context.Context, userID int64) (*domain.Pocket, error)
	AddPost(ctx context.Context, userID, postID int64) (*domain.Pocket, error)
	RemovePost(ctx context.Context, userID, postID int64) (*domain.Pocket, error)
}

type pocketService struct {
	pockets repository.PocketRepository
	posts   repository.PostRepository
}

func NewPocketService(pockets repository.PocketRepository, posts repository.PostRepository) PocketService {
	return &pocketService{
		pockets: pockets,
		posts:   posts,
	}
}

func (s *pocketService) Get(ctx context.Context, userID int64) (*domain.Pocket, error) {
	return s.pockets.GetByUser(ctx, userID)
}

func (s *pocketService) AddPost(ctx context.Context, userID, postID int64) (*domain.Pocket, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	pocket, err := s.pockets.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.pockets.AddPost(ctx, pocket.ID, postID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.BadRequest("This post already exists in your pocket")
		}
		return nil, err
	}

	return s.pockets.GetByUser(ctx, userID)
}

func (s *pocketService) RemovePost(ctx context.Context, userID, postID int64) (*domain.Pocket, error) {
	pocket, err := s.pockets.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.pockets.RemovePost(ctx, pocket.ID, postID); err != nil {
		return nil, err
	}

	return s.pockets.GetByUser(ctx, userID)
}
