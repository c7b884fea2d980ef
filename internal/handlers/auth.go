package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mvaldesd/relato/internal/services"
	appErrors "github.com/mvaldesd/relato/pkg/errors"
	"github.com/mvaldesd/relato/pkg/logger"
	"github.com/mvaldesd/relato/pkg/response"
)

// AuthHandler manages authentication flows (register/verify/login/social login).
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type socialLoginRequest struct {
	Provider string `json:"provider" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Register(requestContext(c), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to confirm your account.",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// GET /auth/verify-email?token=
//
// This endpoint answers in plain text: the link lands in a browser straight
// from the user's inbox, not in an API client.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.String(http.StatusBadRequest, "Verification token is missing.")
		return
	}

	if err := h.auth.VerifyEmail(requestContext(c), token); err != nil {
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.StatusCode < http.StatusInternalServerError {
			c.String(appErr.StatusCode, appErr.Message+".")
			return
		}

		logger.WithModule("http").Error("email verification failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.String(http.StatusOK, "Email verified successfully. You can now sign in.")
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.auth.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   token,
	})
}

// POST /auth/social-login
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req socialLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.auth.SocialLogin(requestContext(c), req.Provider, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Social login successful.",
		"token":   token,
	})
}
