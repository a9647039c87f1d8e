package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jalud/go-leads-backend/internal/domain"
)

func TestCreateAndGetReceipt(t *testing.T) {
	db := newRepoDB(t, &domain.SubmissionReceipt{})

	rec, err := CreateReceipt(context.Background(), db, "form-key-1", "lead-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}
	if rec.ID == "" || rec.ExpiresAt.Before(rec.CreatedAt) {
		t.Fatalf("unexpected receipt: %+v", rec)
	}

	got, err := GetReceipt(context.Background(), db, "form-key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if got.LeadID != "lead-1" || got.Status != 201 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetReceipt_ExpiredOrMissing(t *testing.T) {
	db := newRepoDB(t, &domain.SubmissionReceipt{})

	if _, err := CreateReceipt(context.Background(), db, "old-key", "lead-1", 201, time.Hour); err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}

	// Looking past the TTL behaves like the receipt never existed.
	future := time.Now().UTC().Add(2 * time.Hour)
	if _, err := GetReceipt(context.Background(), db, "old-key", future); err != ErrNotFound {
		t.Fatalf("expired receipt: expected ErrNotFound, got %v", err)
	}
	if _, err := GetReceipt(context.Background(), db, "never-seen", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("missing receipt: expected ErrNotFound, got %v", err)
	}
	if _, err := GetReceipt(context.Background(), db, "  ", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("blank key: expected ErrNotFound, got %v", err)
	}
}

func TestCreateReceipt_DuplicateKey(t *testing.T) {
	db := newRepoDB(t, &domain.SubmissionReceipt{})

	if _, err := CreateReceipt(context.Background(), db, "dup", "lead-1", 201, time.Hour); err != nil {
		t.Fatalf("first CreateReceipt: %v", err)
	}
	if _, err := CreateReceipt(context.Background(), db, "dup", "lead-2", 201, time.Hour); err != ErrDuplicateReceipt {
		t.Fatalf("expected ErrDuplicateReceipt, got %v", err)
	}
}
