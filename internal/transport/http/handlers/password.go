package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/transport/http/middleware"
	"github.com/jahidhiron/freelance-marketplace-auth-service/internal/usecase"
)

// PasswordHandler exposes the password lifecycle endpoints.
type PasswordHandler struct {
	credentials *usecase.CredentialService
}

// NewPasswordHandler constructs a PasswordHandler.
func NewPasswordHandler(credentials *usecase.CredentialService) *PasswordHandler {
	return &PasswordHandler{credentials: credentials}
}

// ForgotPassword godoc
// @Summary Start the password reset flow
// @Description Issues a single-use reset token and notifies the notification service.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/forgot-password [put]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "validation_error", Error: "invalid forgot password payload"})
		return
	}

	if err := h.credentials.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Code: "validation_error", Message: "email format is invalid"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid credentials"},
			{Err: usecase.ErrTooManyResetRequests, Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many password reset requests"},
		}, http.StatusInternalServerError, "failed to start password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset email sent."})
}

// ResetPassword godoc
// @Summary Complete the password reset flow
// @Description Consumes the reset token and installs the new password.
// @Tags Password
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "Reset password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/reset-password/{token} [put]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "validation_error", Error: "invalid reset password payload"})
		return
	}

	token := c.Param("token")

	if err := h.credentials.ResetPassword(c.Request.Context(), token, req.Password, req.ConfirmPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Code: "validation_error", Message: "password does not meet policy"},
			{Err: usecase.ErrPasswordMismatch, Status: http.StatusBadRequest, Code: "password_mismatch", Message: "Passwords do not match"},
			{Err: usecase.ErrTokenExpired, Status: http.StatusBadRequest, Code: "token_expired", Message: "Reset token has expired"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password successfully updated."})
}

// ChangePassword godoc
// @Summary Change the password of the authenticated user
// @Description Verifies the current password and installs the new one.
// @Tags Password
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer session token"
// @Param request body ChangePasswordRequest true "Change password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/change-password [put]
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Error: "invalid authentication"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "validation_error", Error: "invalid change password payload"})
		return
	}

	if err := h.credentials.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Code: "validation_error", Message: "password does not meet policy"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid credentials"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password successfully updated."})
}
