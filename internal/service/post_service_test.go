package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "blog/internal/errors"
	"blog/internal/model"
)

func TestPostService_CreatePost(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockPostRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			setupMock: func(u *MockUserRepository, p *MockPostRepository) {
				u.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
				p.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).
					Run(func(args mock.Arguments) { args.Get(1).(*model.Post).ID = 10 }).
					Return(nil)
			},
		},
		{
			name: "author does not exist",
			setupMock: func(u *MockUserRepository, p *MockPostRepository) {
				u.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name: "foreign key violation maps to user not found",
			setupMock: func(u *MockUserRepository, p *MockPostRepository) {
				u.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
				p.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(gorm.ErrForeignKeyViolated)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			postRepo := new(MockPostRepository)
			tt.setupMock(userRepo, postRepo)

			svc := NewPostService(userRepo, postRepo, nil)
			post, err := svc.CreatePost(context.Background(), 1, "Hi", "Body")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, post)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(10), post.ID)
				assert.Equal(t, uint(1), post.UserID)
				assert.Equal(t, "Hi", post.Title)
				assert.Equal(t, "Body", post.Content)
			}

			userRepo.AssertExpectations(t)
			postRepo.AssertExpectations(t)
			if tt.name == "author does not exist" {
				postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPostService_GetPost(t *testing.T) {
	postRepo := new(MockPostRepository)
	postRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Post{ID: 1, Title: "Hi"}, nil)
	postRepo.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewPostService(new(MockUserRepository), postRepo, nil)

	post, err := svc.GetPost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Hi", post.Title)

	_, err = svc.GetPost(context.Background(), 2)
	assert.Equal(t, apperrors.ErrPostNotFound, err)
}

func TestPostService_ListPosts(t *testing.T) {
	postRepo := new(MockPostRepository)
	postRepo.On("List", mock.Anything).Return([]model.Post{{ID: 1}, {ID: 2}}, nil).Once()
	postRepo.On("List", mock.Anything).Return(nil, errors.New("timeout")).Once()

	svc := NewPostService(new(MockUserRepository), postRepo, nil)

	posts, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = svc.ListPosts(context.Background())
	assert.Error(t, err)
}
