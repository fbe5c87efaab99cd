package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blog/internal/service"
)

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Check a user's password
// @Description Returns the user on a matching password. No token or session is issued.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req, "email", "password"); err != nil {
		return respondError(err)
	}

	user, err := h.userService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}
