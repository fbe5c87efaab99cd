package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blog/internal/errors"
	"blog/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a new post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"user_id"`
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post data"
// @Success 201 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req CreatePostRequest
	if err := bindJSON(c, &req, "title", "content", "user_id"); err != nil {
		return respondError(err)
	}

	post, err := h.postService.CreatePost(c.Request().Context(), refID(req.UserID), req.Title, req.Content)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newPostResponse(post))
}

// ListPosts godoc
// @Summary List all posts
// @Tags posts
// @Produce json
// @Success 200 {array} PostResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.postService.ListPosts(c.Request().Context())
	if err != nil {
		return respondError(err)
	}

	resp := make([]PostResponse, 0, len(posts))
	for i := range posts {
		resp = append(resp, newPostResponse(&posts[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPost godoc
// @Summary Get post by id
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrPostNotFound)
	if err != nil {
		return respondError(err)
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}
