// Lead HTTP handlers.
//
// This file exposes the REST endpoints for contact-form leads:
//   - POST   /api/leads        (public contact form)
//   - GET    /api/leads        (admin list, filterable and sortable)
//   - GET    /api/leads/{id}   (admin detail)
//   - PUT    /api/leads/{id}   (admin status/notes update)
//   - DELETE /api/leads/{id}   (admin delete)
//   - GET    /api/stats        (admin dashboard counters)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into the frontend's JSON envelopes.
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/http/middleware"
	"github.com/jalud/go-leads-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// LeadService defines lead lifecycle operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type LeadService interface {
	// CreateOnce persists a new lead, deduplicated by the optional
	// submission key; replayed reports whether an earlier submission was
	// returned instead of a new row.
	CreateOnce(ctx context.Context, key string, in services.CreateLeadInput) (lead *domain.Lead, replayed bool, err error)
	// List returns leads filtered and ordered per the admin query.
	List(ctx context.Context, f services.LeadListFilter) ([]domain.Lead, error)
	// Get returns a single lead by ID.
	Get(ctx context.Context, id string) (*domain.Lead, error)
	// Update applies a partial status/notes change.
	Update(ctx context.Context, id string, in services.UpdateLeadInput) (*domain.Lead, error)
	// Delete removes a lead.
	Delete(ctx context.Context, id string) error
	// Stats computes the dashboard counters.
	Stats(ctx context.Context) (*services.LeadStats, error)
}

// PostService defines blog post operations consumed by HTTP handlers.
type PostService interface {
	Create(ctx context.Context, in services.CreatePostInput) (*domain.BlogPost, error)
	List(ctx context.Context, f services.PostListFilter) ([]domain.BlogPost, error)
	ListPublished(ctx context.Context) ([]domain.PublicPost, error)
	Get(ctx context.Context, id string) (*domain.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	Update(ctx context.Context, id string, in services.UpdatePostInput) (*domain.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

// ContentService defines AI draft generation consumed by HTTP handlers.
type ContentService interface {
	GenerateDraft(ctx context.Context, in services.GenerateDraftInput) (*services.GeneratedDraft, error)
}

// MediaStore saves validated image uploads and returns their public URL.
type MediaStore interface {
	Save(fh *multipart.FileHeader) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for leads, blog posts, AI generation,
// and image upload. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	leadSvc    LeadService
	postSvc    PostService
	contentSvc ContentService
	media      MediaStore
}

// New constructs a Handlers instance bound to the given collaborators.
func New(leadSvc LeadService, postSvc PostService, contentSvc ContentService, media MediaStore) *Handlers {
	return &Handlers{leadSvc: leadSvc, postSvc: postSvc, contentSvc: contentSvc, media: media}
}

//
// DTOs
//

// CreateLeadRequest is the JSON payload of the public contact form.
type CreateLeadRequest struct {
	FirstName string `json:"firstName" example:"Max"`
	LastName  string `json:"lastName" example:"Mustermann"`
	Phone     string `json:"phone" example:"+49 155 636 538 36"`
	Email     string `json:"email" example:"max@example.de"`
	Package   string `json:"package" example:"premium"`
	Message   string `json:"message" example:"Bitte um Rückruf am Nachmittag."`
}

// UpdateLeadRequest is the JSON payload for the admin lead update. Absent
// fields stay untouched; notes may be set to the empty string.
type UpdateLeadRequest struct {
	Status *string `json:"status" example:"kontaktiert"`
	Notes  *string `json:"notes" example:"Rückruf vereinbart"`
}

// CreateLeadResponse acknowledges a contact-form submission.
type CreateLeadResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Anfrage erfolgreich gesendet!"`
	LeadID  string `json:"leadId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// ListLeadsResponse wraps the admin lead listing.
type ListLeadsResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Leads   []domain.Lead `json:"leads"`
}

// LeadResponse wraps a single lead.
type LeadResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Lead    *domain.Lead `json:"lead"`
}

// StatsResponse wraps the dashboard counters.
type StatsResponse struct {
	Success bool                `json:"success"`
	Stats   *services.LeadStats `json:"stats"`
}

//
// Handlers
//

// CreateLead godoc
// @ID          createLead
// @Summary     Submit a contact-form lead
// @Description Stores the submission with status "neu" and dispatches notification mails. An optional Idempotency-Key header absorbs duplicate submits.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Stable key deduplicating retries"
// @Param       body             body    handlers.CreateLeadRequest  true  "Contact form payload"
//
// @Success     201  {object}  handlers.CreateLeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid fields"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads [post]
func (h *Handlers) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger JSON-Body")
		return
	}

	key, _ := middleware.GetSubmissionKey(c)
	lead, replayed, err := h.leadSvc.CreateOnce(c.Request.Context(), key, services.CreateLeadInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Package:   req.Package,
		Message:   req.Message,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Alle Pflichtfelder müssen ausgefüllt werden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "Serverfehler beim Speichern der Anfrage")
		return
	}
	if replayed {
		middleware.LoggerFrom(c).Info().Str("lead_id", lead.ID).Msg("duplicate submission absorbed")
	}
	ok(c, http.StatusCreated, CreateLeadResponse{
		Success: true,
		Message: "Anfrage erfolgreich gesendet!",
		LeadID:  lead.ID,
	})
}

// ListLeads godoc
// @ID          listLeads
// @Summary     List leads
// @Description Returns all leads, optionally filtered by status and ordered by a whitelisted sort field.
// @Tags        Leads
// @Produce     json
//
// @Param       status  query  string  false "Filter by status"  Enums(neu, kontaktiert, abgeschlossen, abgelehnt)
// @Param       sortBy  query  string  false "Sort field"        default(createdAt)
// @Param       order   query  string  false "Sort direction"    Enums(asc, desc) default(desc)
//
// @Success     200  {object}  handlers.ListLeadsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads [get]
func (h *Handlers) ListLeads(c *gin.Context) {
	leads, err := h.leadSvc.List(c.Request.Context(), services.LeadListFilter{
		Status: c.Query("status"),
		SortBy: c.DefaultQuery("sortBy", "createdAt"),
		Order:  c.DefaultQuery("order", "desc"),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Fehler beim Laden der Leads")
		return
	}
	ok(c, http.StatusOK, ListLeadsResponse{Success: true, Count: len(leads), Leads: leads})
}

// GetLead godoc
// @ID          getLead
// @Summary     Get a single lead
// @Tags        Leads
// @Produce     json
//
// @Param       id  path  string  true  "Lead ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.LeadResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id} [get]
func (h *Handlers) GetLead(c *gin.Context) {
	lead, err := h.leadSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Lead nicht gefunden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Fehler beim Laden des Leads")
		return
	}
	ok(c, http.StatusOK, LeadResponse{Success: true, Lead: lead})
}

// UpdateLead godoc
// @ID          updateLead
// @Summary     Update lead status or notes
// @Description Applies a partial update; omitted fields are left untouched.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Lead ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateLeadRequest  true  "Partial update"
//
// @Success     200  {object}  handlers.LeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid status value"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id} [put]
func (h *Handlers) UpdateLead(c *gin.Context) {
	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger JSON-Body")
		return
	}

	lead, err := h.leadSvc.Update(c.Request.Context(), c.Param("id"), services.UpdateLeadInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Ungültiger Status")
		case errors.Is(err, services.ErrLeadNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Lead nicht gefunden")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "Fehler beim Aktualisieren des Leads")
		}
		return
	}
	ok(c, http.StatusOK, LeadResponse{Success: true, Message: "Lead erfolgreich aktualisiert", Lead: lead})
}

// DeleteLead godoc
// @ID          deleteLead
// @Summary     Delete a lead
// @Tags        Leads
// @Produce     json
//
// @Param       id  path  string  true  "Lead ID (UUID)"  format(uuid)
//
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id} [delete]
func (h *Handlers) DeleteLead(c *gin.Context) {
	if err := h.leadSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Lead nicht gefunden")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "Fehler beim Löschen des Leads")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "message": "Lead erfolgreich gelöscht"})
}

// GetStats godoc
// @ID          getStats
// @Summary     Dashboard statistics
// @Description Returns the total, per-status, and per-package lead counters, computed freshly on every call.
// @Tags        Leads
// @Produce     json
//
// @Success     200  {object}  handlers.StatsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.leadSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, "Fehler beim Laden der Statistiken")
		return
	}
	ok(c, http.StatusOK, StatsResponse{Success: true, Stats: stats})
}
