// Package services defines the business logic for leads, blog posts, and
// AI-assisted content generation. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the base class for all missing/invalid-field failures.
	// Specific messages wrap it via fmt.Errorf("%w: ...") so handlers can
	// match with errors.Is while still surfacing a helpful message.
	ErrValidation = errors.New("validation failed")

	// ErrLeadNotFound indicates that the requested lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrPostNotFound indicates that the requested blog post does not exist,
	// or is not published when resolved through a public lookup.
	ErrPostNotFound = errors.New("blog post not found")

	// ErrSlugTaken is returned when creating or updating a post would collide
	// with an existing slug.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrTopicRequired is returned when a generation request has no topic.
	ErrTopicRequired = errors.New("topic is required")

	// ErrGeneratorUnavailable is returned when the Azure OpenAI deployment is
	// not configured. Maps to HTTP 503 at the boundary.
	ErrGeneratorUnavailable = errors.New("content generator not configured")

	// ErrBadGeneration is returned when the upstream model reply cannot be
	// parsed into the structured draft format.
	ErrBadGeneration = errors.New("malformed generation response")
)

// validationErrorf wraps ErrValidation with a formatted message.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
