// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// SubmissionReceipt model used to absorb double contact-form submissions.
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

// ErrDuplicateReceipt indicates that a receipt already exists for the given
// Idempotency-Key.
var ErrDuplicateReceipt = errors.New("duplicate submission receipt")

// GetReceipt returns a non-expired receipt for key, or ErrNotFound.
func GetReceipt(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.SubmissionReceipt, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.SubmissionReceipt
	err := db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateReceipt inserts a receipt and returns ErrDuplicateReceipt on unique
// violation.
func CreateReceipt(ctx context.Context, db *gorm.DB, key, leadID string, status int, ttl time.Duration) (*domain.SubmissionReceipt, error) {
	now := time.Now().UTC()
	rec := &domain.SubmissionReceipt{
		ID:        uuid.NewString(),
		Key:       key,
		LeadID:    leadID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReceipt
		}
		return nil, err
	}
	return rec, nil
}
