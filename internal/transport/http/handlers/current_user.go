package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/middleware"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/usecase"
)

// CurrentUserHandler exposes the authenticated-user endpoints.
type CurrentUserHandler struct {
	auth *usecase.AuthService
}

// NewCurrentUserHandler constructs a CurrentUserHandler.
func NewCurrentUserHandler(auth *usecase.AuthService) *CurrentUserHandler {
	return &CurrentUserHandler{auth: auth}
}

// CurrentUser godoc
// @Summary Return the authenticated user
// @Tags CurrentUser
// @Produce json
// @Param Authorization header string true "Bearer session token"
// @Success 200 {object} SignInResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/auth/currentuser [get]
func (h *CurrentUserHandler) CurrentUser(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Error: "invalid authentication"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: "not_found", Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load current user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Authenticated user",
		"user":    toUserPayload(user),
	})
}

// RefreshToken godoc
// @Summary Re-issue a session token
// @Tags CurrentUser
// @Produce json
// @Param Authorization header string true "Bearer session token"
// @Success 200 {object} SignInResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/auth/refresh-token [get]
func (h *CurrentUserHandler) RefreshToken(c *gin.Context) {
	username, ok := middleware.GetAuthenticatedUsername(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Error: "invalid authentication"})
		return
	}

	token, user, err := h.auth.RefreshToken(c.Request.Context(), username)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: "not_found", Message: "user not found"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, SignInResponse{
		Message: "Refresh token",
		User:    toUserPayload(user),
		Token:   token,
	})
}
