// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Lead model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a lead is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jalud/go-leads-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// leadSortColumns whitelists the API sort fields against real columns so a
// hostile sortBy query parameter can never reach the ORDER BY clause raw.
var leadSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"lastName":  "last_name",
	"status":    "status",
	"package":   "package",
}

// LeadSortColumn maps an API sort field to its column, falling back to
// created_at for unknown values.
func LeadSortColumn(sortBy string) string {
	if col, ok := leadSortColumns[sortBy]; ok {
		return col
	}
	return "created_at"
}

// CreateLead inserts a new Lead row. The lead ID is a randomly generated
// UUID (string), and CreatedAt is set to UTC.
func CreateLead(ctx context.Context, db *gorm.DB, l *domain.Lead) (*domain.Lead, error) {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// ListLeads returns all leads matching the optional exact-match status
// filter, ordered by the whitelisted sort column. No pagination: the admin
// dashboard always renders the full set.
func ListLeads(ctx context.Context, db *gorm.DB, status, sortBy, order string) ([]domain.Lead, error) {
	q := db.WithContext(ctx).Model(&domain.Lead{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	var out []domain.Lead
	err := q.Order(LeadSortColumn(sortBy) + " " + dir).Find(&out).Error
	return out, err
}

// GetLead fetches a single lead by ID, or ErrNotFound if missing.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	var l domain.Lead
	if err := db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLead applies the given column updates to a lead. If no rows are
// affected (lead missing), it returns ErrNotFound. The updated_at column is
// always refreshed.
func UpdateLead(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLead removes a lead by ID, returning ErrNotFound when absent.
func DeleteLead(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lead{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
