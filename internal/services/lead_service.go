// Package services – LeadService
//
// This file implements LeadService, the application-level component that owns
// the lifecycle of contact-form leads. It validates and normalizes
// submissions, persists them, dispatches best-effort notification mail after
// the write commits, and serves the admin dashboard's listing, update, and
// statistics operations.
//
// Service-level errors (e.g., ErrLeadNotFound, ErrValidation) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
//
// Observability: the write paths are OpenTelemetry-instrumented; spans
// include the lead identifier and requested package.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/repo"
)

// Notifier is the outbound-mail contract consumed by LeadService. A nil
// Notifier (or one reporting Configured() == false) disables dispatch
// entirely; send failures are logged and never surfaced to the caller.
type Notifier interface {
	// Configured reports whether the underlying transport is usable.
	Configured() bool
	// SendLeadConfirmation mails the submitting customer a confirmation.
	SendLeadConfirmation(lead *domain.Lead) error
	// SendLeadAlert mails the site owner a new-lead alert.
	SendLeadAlert(lead *domain.Lead) error
}

// CreateLeadInput carries the contact-form fields for a new lead.
type CreateLeadInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Package   string
	Message   string
}

// Validate checks the mandatory-field and enum invariants for a submission.
// All string fields are considered after trimming.
func (in CreateLeadInput) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"phone", in.Phone},
		{"email", in.Email},
		{"package", in.Package},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return validationErrorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !domain.ValidPackage(strings.TrimSpace(in.Package)) {
		return validationErrorf("unknown package %q", in.Package)
	}
	return nil
}

// UpdateLeadInput carries the partial update applied by the admin dashboard.
// Nil fields are left untouched.
type UpdateLeadInput struct {
	Status *string
	Notes  *string
}

// LeadListFilter selects and orders the leads returned by List.
type LeadListFilter struct {
	Status string // exact match; empty matches all
	SortBy string // createdAt|updatedAt|lastName|status|package
	Order  string // asc|desc (default desc)
}

// LeadStats aggregates the dashboard counters. The German JSON keys are part
// of the admin API contract.
type LeadStats struct {
	Total     int64            `json:"total"`
	New       int64            `json:"neu"`
	Contacted int64            `json:"kontaktiert"`
	Completed int64            `json:"abgeschlossen"`
	Packages  map[string]int64 `json:"packages"`
}

// LeadService coordinates lead persistence and notification dispatch.
type LeadService struct {
	DB     *gorm.DB
	Mailer Notifier

	// ReceiptTTL bounds how long an Idempotency-Key on the public form is
	// honored for replay detection.
	ReceiptTTL time.Duration
}

// Create validates and persists a new lead with status "neu", then fires the
// customer-confirmation and admin-alert mails as best-effort side effects.
// Mail failures are logged and swallowed; the lead is committed either way.
func (s *LeadService) Create(ctx context.Context, in CreateLeadInput) (*domain.Lead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("lead.package", in.Package)),
	)
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Package:   strings.TrimSpace(in.Package),
		Message:   strings.TrimSpace(in.Message),
		Status:    domain.LeadStatusNew,
		Notes:     "",
	}

	if _, err := repo.CreateLead(ctx, s.DB, lead); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID))

	// Dispatch only after the row is durable; failures stay on their own
	// error channel (the log) and never affect the create result.
	s.notify(lead)

	return lead, nil
}

// CreateOnce is Create guarded by a submission receipt. When key is non-empty
// and a non-expired receipt exists, the originally created lead is returned
// with replayed=true and no new row or mail is produced.
func (s *LeadService) CreateOnce(ctx context.Context, key string, in CreateLeadInput) (lead *domain.Lead, replayed bool, err error) {
	if key != "" {
		if rec, rerr := repo.GetReceipt(ctx, s.DB, key, time.Now().UTC()); rerr == nil {
			if prev, gerr := repo.GetLead(ctx, s.DB, rec.LeadID); gerr == nil {
				return prev, true, nil
			}
			// Receipt points at a deleted lead; fall through and re-create.
		}
	}

	lead, err = s.Create(ctx, in)
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		ttl := s.ReceiptTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if _, rerr := repo.CreateReceipt(ctx, s.DB, key, lead.ID, 201, ttl); rerr != nil && !errors.Is(rerr, repo.ErrDuplicateReceipt) {
			log.Warn().Err(rerr).Str("lead_id", lead.ID).Msg("submission receipt not stored")
		}
	}
	return lead, false, nil
}

// List returns all leads matching the filter and the result count.
func (s *LeadService) List(ctx context.Context, f LeadListFilter) ([]domain.Lead, error) {
	if f.Status != "" && !domain.ValidLeadStatus(f.Status) {
		return []domain.Lead{}, nil
	}
	return repo.ListLeads(ctx, s.DB, f.Status, f.SortBy, f.Order)
}

// Get returns a lead by ID or ErrLeadNotFound.
func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	l, err := repo.GetLead(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return l, nil
}

// Update applies a partial status/notes change. Only supplied fields change;
// the updated timestamp is always refreshed. A supplied status outside the
// fixed enumeration fails with ErrValidation.
func (s *LeadService) Update(ctx context.Context, id string, in UpdateLeadInput) (*domain.Lead, error) {
	updates := map[string]any{}
	if in.Status != nil {
		st := strings.TrimSpace(*in.Status)
		if !domain.ValidLeadStatus(st) {
			return nil, validationErrorf("unknown status %q", st)
		}
		updates["status"] = st
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	if err := repo.UpdateLead(ctx, s.DB, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a lead or returns ErrLeadNotFound.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	if err := repo.DeleteLead(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	return nil
}

// Stats computes the dashboard counters freshly on every call.
func (s *LeadService) Stats(ctx context.Context) (*LeadStats, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	out := &LeadStats{}
	var err error
	if out.Total, err = repo.CountLeads(ctx, s.DB, ""); err != nil {
		return nil, err
	}
	if out.New, err = repo.CountLeads(ctx, s.DB, domain.LeadStatusNew); err != nil {
		return nil, err
	}
	if out.Contacted, err = repo.CountLeads(ctx, s.DB, domain.LeadStatusContacted); err != nil {
		return nil, err
	}
	if out.Completed, err = repo.CountLeads(ctx, s.DB, domain.LeadStatusCompleted); err != nil {
		return nil, err
	}
	if out.Packages, err = repo.CountLeadsByPackage(ctx, s.DB); err != nil {
		return nil, err
	}
	return out, nil
}

// notify sends both notification mails synchronously, logging failures.
func (s *LeadService) notify(lead *domain.Lead) {
	if s.Mailer == nil || !s.Mailer.Configured() {
		log.Debug().Str("lead_id", lead.ID).Msg("mail transport not configured, skipping notifications")
		return
	}
	if err := s.Mailer.SendLeadConfirmation(lead); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("customer confirmation mail failed")
	}
	if err := s.Mailer.SendLeadAlert(lead); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("admin alert mail failed")
	}
}
