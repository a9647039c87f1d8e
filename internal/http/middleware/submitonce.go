// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the double-submission guard for the public contact
// form. Browsers retry POSTs on flaky connections and users double-click
// submit buttons; clients that send a stable Idempotency-Key header get the
// originally stored lead back instead of a duplicate row and a second pair
// of notification mails.
//
// The middleware validates the header, stashes the normalized key in the Gin
// context, and optionally consults a lookup to flag known replays so the
// rate limiter can wave them through. Persistence stays behind the narrow
// ReceiptLookup function type; serving the replay is the handler's job.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderSubmissionKey is the request header clients use to convey a stable
// key for a contact-form submission so retries can be deduplicated.
const HeaderSubmissionKey = "Idempotency-Key"

// Context keys used internally to stash submission state.
const (
	ctxKeySubmitKey    = "submit.key"
	ctxKeySubmitReplay = "submit.replay" // bool: true when a stored receipt exists
	ctxKeyRateBypass   = "rate.bypass"   // bool: true to skip rate limiting
)

// GetSubmissionKey returns the validated submission key stored in the Gin
// context by SubmitOnce. The second return value indicates presence.
func GetSubmissionKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeySubmitKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the middleware detected a previously accepted
// submission for this key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeySubmitReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// SubmitOnceOptions configures header validation for SubmitOnce. TTL
// enforcement lives inside the lookup, not here.
type SubmitOnceOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// ReceiptLookup answers whether a still-valid receipt exists for key at the
// given time. Return an error only for lookup failures, which must not block
// normal processing.
type ReceiptLookup func(ctx context.Context, key string, now time.Time) (exists bool, err error)

// SubmitOnce validates the Idempotency-Key header (when present), stashes it
// in the request context, and marks known replays so downstream components
// can short-circuit. An absent header makes the middleware a no-op; an
// invalid one is rejected with 400.
func SubmitOnce(opts SubmitOnceOptions, lookup ReceiptLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderSubmissionKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_submission_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeySubmitKey, key)

		if lookup != nil {
			if exists, _ := lookup(c.Request.Context(), key, time.Now().UTC()); exists {
				c.Set(ctxKeySubmitReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
