package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"blog/internal/cache"
	apperrors "blog/internal/errors"
	"blog/internal/model"
	"blog/internal/repository"
)

// PostService handles post creation and retrieval.
type PostService interface {
	CreatePost(ctx context.Context, userID uint, title, content string) (*model.Post, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
}

type postService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	cache    *cache.Client
}

// NewPostService creates a new post service.
func NewPostService(userRepo repository.UserRepository, postRepo repository.PostRepository, cache *cache.Client) PostService {
	return &postService{
		userRepo: userRepo,
		postRepo: postRepo,
		cache:    cache,
	}
}

// CreatePost inserts a post once its author is known to exist.
func (s *postService) CreatePost(ctx context.Context, userID uint, title, content string) (*model.Post, error) {
	if err := ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetPost finds a post by ID. Posts are immutable, so cached entries never go stale.
func (s *postService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	key := cache.Key("post", id)
	if cached, ok := cache.GetJSON[model.Post](ctx, s.cache, key); ok {
		return cached, nil
	}

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, post)
	return post, nil
}

// ListPosts returns every post.
func (s *postService) ListPosts(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ensureUser returns ErrUserNotFound unless a user with id exists.
func ensureUser(ctx context.Context, repo repository.UserRepository, id uint) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}
