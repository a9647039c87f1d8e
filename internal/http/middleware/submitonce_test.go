package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSubmitOnce_NoHeaderIsNoOp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SubmitOnce(SubmitOnceOptions{}, nil))
	r.POST("/leads", func(c *gin.Context) {
		if _, ok := GetSubmissionKey(c); ok {
			t.Error("no key should be stashed without the header")
		}
		if IsReplay(c) {
			t.Error("no replay flag without the header")
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leads", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSubmitOnce_InvalidKeyRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SubmitOnce(SubmitOnceOptions{}, nil))
	r.POST("/leads", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, key := range []string{"has spaces", "ümläut", strings.Repeat("k", 201)} {
		req := httptest.NewRequest(http.MethodPost, "/leads", nil)
		req.Header.Set(HeaderSubmissionKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status = %d, want 400", key, w.Code)
		}
		if !strings.Contains(w.Body.String(), "bad_submission_key") {
			t.Fatalf("key %q: body = %s", key, w.Body.String())
		}
	}
}

func TestSubmitOnce_ValidKeyStashed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SubmitOnce(SubmitOnceOptions{}, nil))
	r.POST("/leads", func(c *gin.Context) {
		key, ok := GetSubmissionKey(c)
		if !ok || key != "form-1.2~3:ok" {
			t.Errorf("stashed key = %q ok=%v", key, ok)
		}
		if IsReplay(c) || IsRateBypass(c) {
			t.Error("fresh key must not be flagged as replay")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderSubmissionKey, "form-1.2~3:ok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSubmitOnce_KnownReceiptMarksReplayAndBypass(t *testing.T) {
	lookup := func(_ context.Context, key string, _ time.Time) (bool, error) {
		return key == "seen-before", nil
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SubmitOnce(SubmitOnceOptions{}, lookup))
	r.POST("/leads", func(c *gin.Context) {
		if !IsReplay(c) {
			t.Error("known key must be flagged as replay")
		}
		if !IsRateBypass(c) {
			t.Error("replays must bypass rate limiting")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderSubmissionKey, "seen-before")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSubmitOnce_LookupFailureDoesNotBlock(t *testing.T) {
	lookup := func(_ context.Context, _ string, _ time.Time) (bool, error) {
		return false, context.DeadlineExceeded
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SubmitOnce(SubmitOnceOptions{}, lookup))
	r.POST("/leads", func(c *gin.Context) {
		if IsReplay(c) {
			t.Error("failed lookup must not flag a replay")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderSubmissionKey, "any-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}
