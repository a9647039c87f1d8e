// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// SubmissionReceipt records a previously processed contact-form submission,
// keyed by the client-supplied Idempotency-Key. It lets the lead endpoint
// absorb double submits (impatient re-clicks, network retries) by returning
// the originally created lead without persisting a second row or re-sending
// notification mail.
type SubmissionReceipt struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_receipt_key"`
	LeadID    string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (SubmissionReceipt) TableName() string { return "submission_receipts" }
