// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable; clients branch on
// them while the German message text stays free to change.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeStatsFailed      = "stats_failed"
	ErrCodeSlugTaken        = "slug_taken"
	ErrCodeUploadRejected   = "upload_rejected"
	ErrCodeGeneratorOffline = "generator_unavailable"
	ErrCodeGenerationFailed = "generation_failed"
)
