// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the admin
// dashboard statistics endpoint. Each function is context-aware and computes
// its result freshly on every call (no caching).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/jalud/go-leads-backend/internal/domain"
)

// CountLeads returns the total number of leads, optionally restricted to an
// exact-match status.
func CountLeads(ctx context.Context, db *gorm.DB, status string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Lead{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// CountLeadsByPackage returns the number of leads grouped by package value.
// Packages with no leads are absent from the map.
func CountLeadsByPackage(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Package string
		Count   int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Select("package, COUNT(*) AS count").
		Group("package").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Package] = r.Count
	}
	return out, nil
}
