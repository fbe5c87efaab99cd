package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blog/internal/errors"
	"blog/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents a new comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
	UserID  int64  `json:"user_id"`
	PostID  int64  `json:"post_id"`
}

// CreateComment godoc
// @Summary Comment on a post
// @Description The user is checked before the post; neither failure writes a row.
// @Tags comments
// @Accept json
// @Produce json
// @Param request body CreateCommentRequest true "Comment data"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req CreateCommentRequest
	if err := bindJSON(c, &req, "content", "user_id", "post_id"); err != nil {
		return respondError(err)
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), refID(req.UserID), refID(req.PostID), req.Content)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// ListComments godoc
// @Summary List all comments
// @Tags comments
// @Produce json
// @Success 200 {array} CommentResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments [get]
func (h *CommentHandler) ListComments(c echo.Context) error {
	comments, err := h.commentService.ListComments(c.Request().Context())
	if err != nil {
		return respondError(err)
	}

	resp := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, newCommentResponse(&comments[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetComment godoc
// @Summary Get comment by id
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} CommentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comments/{id} [get]
func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrCommentNotFound)
	if err != nil {
		return respondError(err)
	}

	comment, err := h.commentService.GetComment(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newCommentResponse(comment))
}
