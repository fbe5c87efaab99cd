package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blog/internal/errors"
	"blog/internal/service"
)

// UserHandler serves user registration and profile endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest carries the profile fields to change. Omitted fields are
// left untouched.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// CreateUser godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Registration data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindJSON(c, &req, "username", "email", "password"); err != nil {
		return respondError(err)
	}

	user, err := h.svc.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newUserResponse(user))
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return respondError(err)
	}

	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser godoc
// @Summary Update username and/or email
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return respondError(err)
	}

	// An unknown user wins over a bad body.
	if _, err := h.svc.GetUser(c.Request().Context(), id); err != nil {
		return respondError(err)
	}

	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(err)
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UserChanges{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}
