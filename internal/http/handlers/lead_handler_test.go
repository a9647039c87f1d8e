package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/http/middleware"
	"github.com/jalud/go-leads-backend/internal/services"
)

//
// Stub collaborators. Function fields keep each test's behavior local to the
// test body; unset fields panic, which surfaces unexpected calls immediately.
//

type stubLeadService struct {
	createOnce func(ctx context.Context, key string, in services.CreateLeadInput) (*domain.Lead, bool, error)
	list       func(ctx context.Context, f services.LeadListFilter) ([]domain.Lead, error)
	get        func(ctx context.Context, id string) (*domain.Lead, error)
	update     func(ctx context.Context, id string, in services.UpdateLeadInput) (*domain.Lead, error)
	del        func(ctx context.Context, id string) error
	stats      func(ctx context.Context) (*services.LeadStats, error)
}

func (s *stubLeadService) CreateOnce(ctx context.Context, key string, in services.CreateLeadInput) (*domain.Lead, bool, error) {
	return s.createOnce(ctx, key, in)
}
func (s *stubLeadService) List(ctx context.Context, f services.LeadListFilter) ([]domain.Lead, error) {
	return s.list(ctx, f)
}
func (s *stubLeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return s.get(ctx, id)
}
func (s *stubLeadService) Update(ctx context.Context, id string, in services.UpdateLeadInput) (*domain.Lead, error) {
	return s.update(ctx, id, in)
}
func (s *stubLeadService) Delete(ctx context.Context, id string) error { return s.del(ctx, id) }
func (s *stubLeadService) Stats(ctx context.Context) (*services.LeadStats, error) {
	return s.stats(ctx)
}

type stubPostService struct {
	create        func(ctx context.Context, in services.CreatePostInput) (*domain.BlogPost, error)
	list          func(ctx context.Context, f services.PostListFilter) ([]domain.BlogPost, error)
	listPublished func(ctx context.Context) ([]domain.PublicPost, error)
	get           func(ctx context.Context, id string) (*domain.BlogPost, error)
	getBySlug     func(ctx context.Context, slug string) (*domain.BlogPost, error)
	update        func(ctx context.Context, id string, in services.UpdatePostInput) (*domain.BlogPost, error)
	del           func(ctx context.Context, id string) error
}

func (s *stubPostService) Create(ctx context.Context, in services.CreatePostInput) (*domain.BlogPost, error) {
	return s.create(ctx, in)
}
func (s *stubPostService) List(ctx context.Context, f services.PostListFilter) ([]domain.BlogPost, error) {
	return s.list(ctx, f)
}
func (s *stubPostService) ListPublished(ctx context.Context) ([]domain.PublicPost, error) {
	return s.listPublished(ctx)
}
func (s *stubPostService) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	return s.get(ctx, id)
}
func (s *stubPostService) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return s.getBySlug(ctx, slug)
}
func (s *stubPostService) Update(ctx context.Context, id string, in services.UpdatePostInput) (*domain.BlogPost, error) {
	return s.update(ctx, id, in)
}
func (s *stubPostService) Delete(ctx context.Context, id string) error { return s.del(ctx, id) }

type stubContentService struct {
	generate func(ctx context.Context, in services.GenerateDraftInput) (*services.GeneratedDraft, error)
}

func (s *stubContentService) GenerateDraft(ctx context.Context, in services.GenerateDraftInput) (*services.GeneratedDraft, error) {
	return s.generate(ctx, in)
}

type stubMediaStore struct {
	save func(fh *multipart.FileHeader) (string, error)
}

func (s *stubMediaStore) Save(fh *multipart.FileHeader) (string, error) { return s.save(fh) }

// testRouter wires the handlers under the same route layout the server uses.
func testRouter(leadSvc LeadService, postSvc PostService, contentSvc ContentService, media MediaStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(leadSvc, postSvc, contentSvc, media)

	r := gin.New()
	r.Use(middleware.SubmitOnce(middleware.SubmitOnceOptions{}, nil))
	api := r.Group("/api")
	api.POST("/leads", h.CreateLead)
	api.GET("/leads", h.ListLeads)
	api.GET("/leads/:id", h.GetLead)
	api.PUT("/leads/:id", h.UpdateLead)
	api.DELETE("/leads/:id", h.DeleteLead)
	api.GET("/stats", h.GetStats)
	api.POST("/blog/generate", h.GenerateDraft)
	api.POST("/blog/upload-image", h.UploadImage)
	api.POST("/blog/posts", h.CreatePost)
	api.GET("/blog/posts", h.ListPosts)
	api.GET("/blog/posts/published", h.ListPublishedPosts)
	api.GET("/blog/posts/slug/:slug", h.GetPostBySlug)
	api.GET("/blog/posts/:id", h.GetPost)
	api.PUT("/blog/posts/:id", h.UpdatePost)
	api.DELETE("/blog/posts/:id", h.DeletePost)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, url string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %s: %v", w.Body.String(), err)
	}
}

//
// Lead endpoints
//

func TestCreateLead_Success(t *testing.T) {
	var gotKey string
	var gotIn services.CreateLeadInput
	leads := &stubLeadService{
		createOnce: func(_ context.Context, key string, in services.CreateLeadInput) (*domain.Lead, bool, error) {
			gotKey, gotIn = key, in
			return &domain.Lead{ID: "lead-1"}, false, nil
		},
	}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/leads", CreateLeadRequest{
		FirstName: "Max",
		LastName:  "Mustermann",
		Phone:     "+49 151 1234567",
		Email:     "max@example.de",
		Package:   "premium",
	}, map[string]string{middleware.HeaderSubmissionKey: "form-key-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateLeadResponse
	decodeBody(t, w, &resp)
	if !resp.Success || resp.LeadID != "lead-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message != "Anfrage erfolgreich gesendet!" {
		t.Fatalf("message = %q", resp.Message)
	}
	if gotKey != "form-key-1" {
		t.Fatalf("submission key = %q", gotKey)
	}
	if gotIn.Package != "premium" || gotIn.Email != "max@example.de" {
		t.Fatalf("input not forwarded: %+v", gotIn)
	}
}

func TestCreateLead_ErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{services.ErrValidation, http.StatusBadRequest, "Alle Pflichtfelder müssen ausgefüllt werden"},
		{errors.New("db down"), http.StatusInternalServerError, "Serverfehler beim Speichern der Anfrage"},
	}
	for _, tc := range cases {
		leads := &stubLeadService{
			createOnce: func(context.Context, string, services.CreateLeadInput) (*domain.Lead, bool, error) {
				return nil, false, tc.err
			},
		}
		r := testRouter(leads, nil, nil, nil)
		w := doJSON(t, r, http.MethodPost, "/api/leads", CreateLeadRequest{FirstName: "x"}, nil)
		if w.Code != tc.status {
			t.Fatalf("err %v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var resp ErrorResponse
		decodeBody(t, w, &resp)
		if resp.Success || resp.Message != tc.message {
			t.Fatalf("err %v: response = %+v", tc.err, resp)
		}
	}
}

func TestCreateLead_MalformedJSON(t *testing.T) {
	r := testRouter(&stubLeadService{}, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ungültiger JSON-Body") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestListLeads_ForwardsQuery(t *testing.T) {
	var gotFilter services.LeadListFilter
	leads := &stubLeadService{
		list: func(_ context.Context, f services.LeadListFilter) ([]domain.Lead, error) {
			gotFilter = f
			return []domain.Lead{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/leads?status=neu&sortBy=lastName&order=asc", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListLeadsResponse
	decodeBody(t, w, &resp)
	if !resp.Success || resp.Count != 2 || len(resp.Leads) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotFilter.Status != "neu" || gotFilter.SortBy != "lastName" || gotFilter.Order != "asc" {
		t.Fatalf("filter not forwarded: %+v", gotFilter)
	}
}

func TestListLeads_Defaults(t *testing.T) {
	var gotFilter services.LeadListFilter
	leads := &stubLeadService{
		list: func(_ context.Context, f services.LeadListFilter) ([]domain.Lead, error) {
			gotFilter = f
			return nil, nil
		},
	}
	r := testRouter(leads, nil, nil, nil)
	doJSON(t, r, http.MethodGet, "/api/leads", nil, nil)
	if gotFilter.SortBy != "createdAt" || gotFilter.Order != "desc" {
		t.Fatalf("defaults not applied: %+v", gotFilter)
	}
}

func TestGetLead_NotFound(t *testing.T) {
	leads := &stubLeadService{
		get: func(context.Context, string) (*domain.Lead, error) {
			return nil, services.ErrLeadNotFound
		},
	}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/leads/missing", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Lead nicht gefunden") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestUpdateLead(t *testing.T) {
	status := "kontaktiert"
	leads := &stubLeadService{
		update: func(_ context.Context, id string, in services.UpdateLeadInput) (*domain.Lead, error) {
			if id != "lead-1" || in.Status == nil || *in.Status != status {
				t.Errorf("unexpected update args: id=%q in=%+v", id, in)
			}
			return &domain.Lead{ID: id, Status: status}, nil
		},
	}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodPut, "/api/leads/lead-1", UpdateLeadRequest{Status: &status}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp LeadResponse
	decodeBody(t, w, &resp)
	if resp.Message != "Lead erfolgreich aktualisiert" || resp.Lead.Status != status {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdateLead_InvalidStatus(t *testing.T) {
	leads := &stubLeadService{
		update: func(context.Context, string, services.UpdateLeadInput) (*domain.Lead, error) {
			return nil, services.ErrValidation
		},
	}
	r := testRouter(leads, nil, nil, nil)

	bogus := "erledigt"
	w := doJSON(t, r, http.MethodPut, "/api/leads/lead-1", UpdateLeadRequest{Status: &bogus}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ungültiger Status") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestDeleteLead(t *testing.T) {
	leads := &stubLeadService{del: func(context.Context, string) error { return nil }}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodDelete, "/api/leads/lead-1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Lead erfolgreich gelöscht") {
		t.Fatalf("body = %s", w.Body.String())
	}

	leads.del = func(context.Context, string) error { return services.ErrLeadNotFound }
	w = doJSON(t, r, http.MethodDelete, "/api/leads/lead-1", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetStats(t *testing.T) {
	leads := &stubLeadService{
		stats: func(context.Context) (*services.LeadStats, error) {
			return &services.LeadStats{
				Total:     4,
				New:       2,
				Contacted: 1,
				Completed: 1,
				Packages:  map[string]int64{"premium": 3, "basic": 1},
			}, nil
		},
	}
	r := testRouter(leads, nil, nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/stats", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// The dashboard expects the German wire keys.
	var raw map[string]json.RawMessage
	decodeBody(t, w, &raw)
	var stats map[string]json.RawMessage
	if err := json.Unmarshal(raw["stats"], &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	for _, key := range []string{"total", "neu", "kontaktiert", "abgeschlossen", "packages"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing wire key %q: %s", key, w.Body.String())
		}
	}
}
