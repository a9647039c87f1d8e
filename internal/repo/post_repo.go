// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the BlogPost
// model, including the published-only queries used by the public site.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jalud/go-leads-backend/internal/domain"
)

// ErrDuplicateSlug indicates that a post with the same slug already exists.
// Slug uniqueness is enforced by the store (unique index), not re-checked in
// application code, so concurrent creates cannot race past the constraint.
var ErrDuplicateSlug = errors.New("duplicate slug")

var postSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
	"category":    "category",
	"status":      "status",
}

// PostSortColumn maps an API sort field to its column, falling back to
// created_at for unknown values.
func PostSortColumn(sortBy string) string {
	if col, ok := postSortColumns[sortBy]; ok {
		return col
	}
	return "created_at"
}

// CreatePost inserts a new BlogPost row. A unique-constraint violation on the
// slug index is mapped to ErrDuplicateSlug.
func CreatePost(ctx context.Context, db *gorm.DB, p *domain.BlogPost) (*domain.BlogPost, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return p, nil
}

// ListPosts returns all posts matching the optional status and category
// filters, ordered by the whitelisted sort column.
func ListPosts(ctx context.Context, db *gorm.DB, status, category, sortBy, order string) ([]domain.BlogPost, error) {
	q := db.WithContext(ctx).Model(&domain.BlogPost{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	var out []domain.BlogPost
	err := q.Order(PostSortColumn(sortBy) + " " + dir).Find(&out).Error
	return out, err
}

// ListPublishedPosts returns published posts ordered by publication time
// descending. The full record is loaded; the service layer projects it down
// to the public shape.
func ListPublishedPosts(ctx context.Context, db *gorm.DB) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	err := db.WithContext(ctx).
		Where("status = ?", domain.PostStatusPublished).
		Order("published_at DESC").
		Find(&out).Error
	return out, err
}

// GetPost fetches a single post by ID, or ErrNotFound if missing.
func GetPost(ctx context.Context, db *gorm.DB, id string) (*domain.BlogPost, error) {
	var p domain.BlogPost
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublishedPostBySlug resolves a slug to its post only when the post is
// published. Drafts and archived posts yield ErrNotFound.
func GetPublishedPostBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.BlogPost, error) {
	var p domain.BlogPost
	err := db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, domain.PostStatusPublished).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost applies the given column updates to a post. The updated_at
// column is always refreshed. Returns ErrNotFound when no row matches and
// ErrDuplicateSlug when a slug update collides.
func UpdatePost(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.BlogPost{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicateSlug
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost removes a post by ID, returning ErrNotFound when absent.
func DeletePost(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.BlogPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: unique") ||
		strings.Contains(msg, "duplicate key")
}
