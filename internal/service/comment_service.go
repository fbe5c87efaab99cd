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

// CommentService handles comment creation and retrieval.
type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uint, content string) (*model.Comment, error)
	GetComment(ctx context.Context, id uint) (*model.Comment, error)
	ListComments(ctx context.Context) ([]model.Comment, error)
}

type commentService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	cache       *cache.Client
}

// NewCommentService creates a new comment service.
func NewCommentService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	cache *cache.Client,
) CommentService {
	return &commentService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		cache:       cache,
	}
}

// CreateComment checks the commenter, then the post, and only then inserts.
func (s *commentService) CreateComment(ctx context.Context, userID, postID uint, content string) (*model.Comment, error) {
	if err := ensureUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) GetComment(ctx context.Context, id uint) (*model.Comment, error) {
	key := cache.Key("comment", id)
	if cached, ok := cache.GetJSON[model.Comment](ctx, s.cache, key); ok {
		return cached, nil
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, comment)
	return comment, nil
}

func (s *commentService) ListComments(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.commentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
