package service

import (
	"context"
	"log/slog"

	"lireddit/internal/middleware"
	"lireddit/internal/models"
	"lireddit/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) Posts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}

// Post returns nil, nil for an unknown id.
func (s *PostService) Post(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, title string) (*models.Post, error) {
	post := &models.Post{Title: title}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost overwrites the title only when one is given and always returns
// the current record.
func (s *PostService) UpdatePost(ctx context.Context, id uint, title *string) (*models.Post, error) {
	post, err := s.Post(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if title == nil {
		return post, nil
	}

	post.Title = *title
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost reports false on any storage failure, which is logged rather than returned.
func (s *PostService) DeletePost(ctx context.Context, id uint) bool {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to delete post",
			slog.Uint64("post_id", uint64(id)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}
