package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvaldesd/relato/internal/services"
	appErrors "github.com/mvaldesd/relato/pkg/errors"
	"github.com/mvaldesd/relato/pkg/response"
)

// PostHandler exposes owner-scoped CRUD over posts.
type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req postRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.posts.Create(requestContext(c), userID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Post created successfully.",
		"post":    post,
	})
}

// GET /posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.ListAll(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, posts)
}

// GET /posts/me
func (h *PostHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	posts, err := h.posts.ListMine(requestContext(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, posts)
}

// PUT /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req postRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.posts.Update(requestContext(c), userID, c.Param("id"), req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Post updated successfully.",
		"post":    post,
	})
}

// DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.posts.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
