package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mvaldesd/relato/internal/models"
	apperrors "github.com/mvaldesd/relato/pkg/errors"
)

// PostWithAuthor annotates a post with its owner's email for the public feed.
type PostWithAuthor struct {
	models.Post
	AuthorEmail string `json:"author_email"`
}

// PostService manages the CRUD lifecycle of posts, enforcing owner-only
// mutation.
type PostService struct {
	db *gorm.DB
}

// NewPostService constructs a PostService instance.
func NewPostService(db *gorm.DB) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	return &PostService{db: db}, nil
}

// Create inserts a post owned by userID and returns the stored row.
func (s *PostService) Create(ctx context.Context, userID, title, content string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewBadRequest("content is required")
	}

	post := &models.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("post service: create post: %w", err)
	}

	return post, nil
}

// ListAll returns every post across all users, newest first, each annotated
// with the owning user's email.
func (s *PostService) ListAll(ctx context.Context) ([]PostWithAuthor, error) {
	posts := make([]PostWithAuthor, 0)
	err := s.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, users.email AS author_email").
		Joins("JOIN users ON users.id = posts.user_id").
		Order("posts.created_at DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("post service: list posts: %w", err)
	}

	return posts, nil
}

// ListMine returns only the caller's posts, newest first.
func (s *PostService) ListMine(ctx context.Context, userID string) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("post service: list own posts: %w", err)
	}

	return posts, nil
}

// Update rewrites title and content of a post, but only where both the id
// and the owner match. A zero-row update is reported as Forbidden without
// distinguishing "not found" from "not yours".
func (s *PostService) Update(ctx context.Context, userID, postID, title, content string) (*models.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewBadRequest("content is required")
	}

	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", postID, userID).
		Updates(map[string]any{
			"title":   title,
			"content": content,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("post service: update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrForbidden
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		return nil, fmt.Errorf("post service: reload post: %w", err)
	}

	return &post, nil
}

// Delete removes a post where both the id and the owner match, with the same
// unified Forbidden as Update when nothing matched.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", postID, userID).
		Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("post service: delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrForbidden
	}

	return nil
}
