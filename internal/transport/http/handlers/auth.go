package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/core/domain"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/usecase"
)

// AuthHandler exposes sign-in.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignIn godoc
// @Summary Authenticate a user
// @Description Validates credentials and issues a session token. The username field accepts a username or email address.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Sign in request"
// @Success 200 {object} SignInResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "validation_error", Error: "invalid sign in payload"})
		return
	}

	token, user, err := h.auth.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Code: "validation_error", Message: "invalid sign in payload"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid credentials"},
		}, http.StatusInternalServerError, "failed to sign in")
		return
	}

	c.JSON(http.StatusOK, SignInResponse{
		Message: "User login successfully",
		User:    toUserPayload(user),
		Token:   token,
	})
}

func toUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
