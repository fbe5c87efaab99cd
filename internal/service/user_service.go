package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"blog/internal/cache"
	apperrors "blog/internal/errors"
	"blog/internal/model"
	"blog/internal/password"
	"blog/internal/repository"
)

// UserService exposes user registration, login and profile operations.
type UserService interface {
	Register(ctx context.Context, username, email, plain string) (*model.User, error)
	Authenticate(ctx context.Context, email, plain string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, changes UserChanges) (*model.User, error)
}

// UserChanges lists the profile fields to overwrite; nil fields are kept.
type UserChanges struct {
	Username *string
	Email    *string
}

type userService struct {
	repo   repository.UserRepository
	hasher *password.Hasher
	cache  *cache.Client
	guard  *fillGuard
}

// NewUserService builds a UserService with repository, hasher and cache.
func NewUserService(repo repository.UserRepository, hasher *password.Hasher, cache *cache.Client) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache, guard: newFillGuard()}
}

func (s *userService) cacheKey(id uint) string {
	return cache.Key("user", id)
}

// Register hashes the password and inserts the user. Uniqueness is left to the
// store's unique indexes; a rejected insert is then classified as a username
// or email conflict.
func (s *userService) Register(ctx context.Context, username, email, plain string) (*model.User, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if conflict := s.identityConflict(ctx, 0, username, email); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning email when plain matches its password.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, email, plain string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, plain) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, plain)
	}
	return user, nil
}

// rehash moves a verified password to the configured algorithm. Failures only
// get logged; the login itself already succeeded.
func (s *userService) rehash(ctx context.Context, user *model.User, plain string) {
	from := user.PasswordHash.Algorithm
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("rehash password failed")
		return
	}
	previous := user.PasswordHash
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		user.PasswordHash = previous
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("store rehashed password failed")
		return
	}
	log.Info().Uint("user_id", user.ID).Str("from", from).Str("to", hash.Algorithm).Msg("password rehashed")
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if cached, ok := cache.GetJSON[model.User](ctx, s.cache, s.cacheKey(id)); ok {
		return cached, nil
	}

	gen := s.guard.begin(id)
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.guard.fill(id, gen, func() {
		cache.SetJSON(ctx, s.cache, s.cacheKey(id), user)
	})
	return user, nil
}

// UpdateUser overwrites the submitted fields. New values must not belong to
// another user.
func (s *userService) UpdateUser(ctx context.Context, id uint, changes UserChanges) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if changes.Username != nil {
		user.Username = *changes.Username
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}

	// Other instances share the cache but not the guard; the first delete
	// narrows their window.
	s.cache.Delete(ctx, s.cacheKey(id))
	if err := s.repo.Update(ctx, user); err != nil {
		if conflict := s.identityConflict(ctx, id, user.Username, user.Email); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.guard.invalidate(id)
	s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// identityConflict reports which of username or email is held by a user other
// than self (0 matches every user). It returns nil when neither is taken.
func (s *userService) identityConflict(ctx context.Context, self uint, username, email string) error {
	if other, err := s.repo.FindByUsername(ctx, username); err == nil && other.ID != self {
		return apperrors.ErrUsernameTaken
	}
	if other, err := s.repo.FindByEmail(ctx, email); err == nil && other.ID != self {
		return apperrors.ErrEmailTaken
	}
	return nil
}
