package handler

import (
	"time"

	"blog/internal/model"
)

// UserResponse is the public view of a user. The password hash never leaves
// the service.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PostResponse represents a post.
type PostResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentResponse represents a comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	PostID    uint      `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func newPostResponse(p *model.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

func newCommentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		Content:   cm.Content,
		UserID:    cm.UserID,
		PostID:    cm.PostID,
		CreatedAt: cm.CreatedAt.UTC(),
	}
}
