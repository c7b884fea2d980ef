package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvaldesd/relato/internal/services"
	appErrors "github.com/mvaldesd/relato/pkg/errors"
	"github.com/mvaldesd/relato/pkg/response"
)

// ProfileHandler exposes current-user account endpoints.
type ProfileHandler struct {
	users *services.UserService
	auth  *services.AuthService
}

func NewProfileHandler(users *services.UserService, auth *services.AuthService) *ProfileHandler {
	return &ProfileHandler{users: users, auth: auth}
}

// GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// DELETE /profile
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.auth.DeleteAccount(requestContext(c), userID); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Your account has been deleted.",
	})
}
