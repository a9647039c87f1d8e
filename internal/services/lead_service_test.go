package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jalud/go-leads-backend/internal/domain"
	"github.com/jalud/go-leads-backend/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// stubNotifier records notification calls and can be told to fail.
type stubNotifier struct {
	configured    bool
	failConfirm   error
	failAlert     error
	confirmations []string // customer emails
	alerts        []string // lead IDs
}

func (s *stubNotifier) Configured() bool { return s.configured }

func (s *stubNotifier) SendLeadConfirmation(lead *domain.Lead) error {
	if s.failConfirm != nil {
		return s.failConfirm
	}
	s.confirmations = append(s.confirmations, lead.Email)
	return nil
}

func (s *stubNotifier) SendLeadAlert(lead *domain.Lead) error {
	if s.failAlert != nil {
		return s.failAlert
	}
	s.alerts = append(s.alerts, lead.ID)
	return nil
}

func validLeadInput() CreateLeadInput {
	return CreateLeadInput{
		FirstName: "  Max ",
		LastName:  "Mustermann",
		Phone:     "+49 155 636 538 36",
		Email:     "Max.Mustermann@Example.DE",
		Package:   domain.PackagePremium,
	}
}

func TestLeadService_Create_NormalizesAndNotifies(t *testing.T) {
	db := newServiceDB(t)
	n := &stubNotifier{configured: true}
	svc := &LeadService{DB: db, Mailer: n}

	lead, err := svc.Create(context.Background(), validLeadInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lead.Status != domain.LeadStatusNew {
		t.Fatalf("new lead must start as neu, got %q", lead.Status)
	}
	if lead.Email != "max.mustermann@example.de" {
		t.Fatalf("email not lower-cased: %q", lead.Email)
	}
	if lead.FirstName != "Max" {
		t.Fatalf("first name not trimmed: %q", lead.FirstName)
	}
	if lead.Message != "" || lead.Notes != "" {
		t.Fatalf("optional fields must default empty: %+v", lead)
	}
	if len(n.confirmations) != 1 || n.confirmations[0] != "max.mustermann@example.de" {
		t.Fatalf("confirmation not sent: %v", n.confirmations)
	}
	if len(n.alerts) != 1 || n.alerts[0] != lead.ID {
		t.Fatalf("alert not sent: %v", n.alerts)
	}
}

func TestLeadService_Create_MailFailureIsSwallowed(t *testing.T) {
	db := newServiceDB(t)
	n := &stubNotifier{configured: true, failConfirm: errors.New("smtp down"), failAlert: errors.New("smtp down")}
	svc := &LeadService{DB: db, Mailer: n}

	lead, err := svc.Create(context.Background(), validLeadInput())
	if err != nil {
		t.Fatalf("mail failure must not fail the create: %v", err)
	}
	if _, err := repo.GetLead(context.Background(), db, lead.ID); err != nil {
		t.Fatalf("lead must be persisted despite mail failure: %v", err)
	}
}

func TestLeadService_Create_UnconfiguredMailerSkipsDispatch(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db, Mailer: &stubNotifier{configured: false}}

	if _, err := svc.Create(context.Background(), validLeadInput()); err != nil {
		t.Fatalf("Create without mail transport: %v", err)
	}
}

func TestLeadService_Create_ValidationRejectsAndPersistsNothing(t *testing.T) {
	db := newServiceDB(t)
	n := &stubNotifier{configured: true}
	svc := &LeadService{DB: db, Mailer: n}

	cases := []CreateLeadInput{
		{},
		{FirstName: "Max", LastName: "M", Phone: "1", Email: "   ", Package: domain.PackageBasic},
		{FirstName: "Max", LastName: "M", Phone: "1", Email: "m@x.de", Package: "platinum"},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}

	count, err := repo.CountLeads(context.Background(), db, "")
	if err != nil || count != 0 {
		t.Fatalf("rejected submissions must not persist: count=%d err=%v", count, err)
	}
	if len(n.confirmations)+len(n.alerts) != 0 {
		t.Fatal("rejected submissions must not trigger mail")
	}
}

func TestLeadService_CreateOnce_AbsorbsDuplicateSubmission(t *testing.T) {
	db := newServiceDB(t)
	n := &stubNotifier{configured: true}
	svc := &LeadService{DB: db, Mailer: n, ReceiptTTL: time.Hour}

	first, replayed, err := svc.CreateOnce(context.Background(), "submit-abc", validLeadInput())
	if err != nil || replayed {
		t.Fatalf("first submit: lead=%v replayed=%v err=%v", first, replayed, err)
	}

	second, replayed, err := svc.CreateOnce(context.Background(), "submit-abc", validLeadInput())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !replayed || second.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s (replayed=%v)", first.ID, second.ID, replayed)
	}

	count, _ := repo.CountLeads(context.Background(), db, "")
	if count != 1 {
		t.Fatalf("duplicate submit created a second row: count=%d", count)
	}
	if len(n.confirmations) != 1 {
		t.Fatalf("duplicate submit re-sent mail: %v", n.confirmations)
	}
}

func TestLeadService_CreateOnce_DistinctKeysCreateDistinctLeads(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db, ReceiptTTL: time.Hour}

	if _, _, err := svc.CreateOnce(context.Background(), "key-1", validLeadInput()); err != nil {
		t.Fatalf("key-1: %v", err)
	}
	if _, _, err := svc.CreateOnce(context.Background(), "key-2", validLeadInput()); err != nil {
		t.Fatalf("key-2: %v", err)
	}
	count, _ := repo.CountLeads(context.Background(), db, "")
	if count != 2 {
		t.Fatalf("expected 2 leads, got %d", count)
	}
}

func TestLeadService_Update(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db}

	lead, err := svc.Create(context.Background(), validLeadInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := domain.LeadStatusContacted
	notes := "Rückruf vereinbart"
	got, err := svc.Update(context.Background(), lead.ID, UpdateLeadInput{Status: &status, Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != domain.LeadStatusContacted || got.Notes != notes {
		t.Fatalf("update not applied: %+v", got)
	}

	// Notes may be cleared explicitly.
	empty := ""
	got, err = svc.Update(context.Background(), lead.ID, UpdateLeadInput{Notes: &empty})
	if err != nil || got.Notes != "" {
		t.Fatalf("clearing notes: notes=%q err=%v", got.Notes, err)
	}
	if got.Status != domain.LeadStatusContacted {
		t.Fatalf("status must survive a notes-only update, got %q", got.Status)
	}

	bad := "erledigt"
	if _, err := svc.Update(context.Background(), lead.ID, UpdateLeadInput{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}

	if _, err := svc.Update(context.Background(), "missing", UpdateLeadInput{Notes: &notes}); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestLeadService_GetAndDelete(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db}

	lead, _ := svc.Create(context.Background(), validLeadInput())

	if _, err := svc.Get(context.Background(), lead.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	if err := svc.Delete(context.Background(), lead.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), lead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound on double delete, got %v", err)
	}
}

func TestLeadService_List_UnknownStatusYieldsEmpty(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db}

	if _, err := svc.Create(context.Background(), validLeadInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	leads, err := svc.List(context.Background(), LeadListFilter{Status: "erledigt"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(leads) != 0 {
		t.Fatalf("unknown status must match nothing, got %d", len(leads))
	}
}

func TestLeadService_Stats(t *testing.T) {
	db := newServiceDB(t)
	svc := &LeadService{DB: db}

	mk := func(pkg, status string) {
		in := validLeadInput()
		in.Package = pkg
		lead, err := svc.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("seed lead: %v", err)
		}
		if status != domain.LeadStatusNew {
			if _, err := svc.Update(context.Background(), lead.ID, UpdateLeadInput{Status: &status}); err != nil {
				t.Fatalf("seed status: %v", err)
			}
		}
	}
	mk(domain.PackageBasic, domain.LeadStatusNew)
	mk(domain.PackagePremium, domain.LeadStatusContacted)
	mk(domain.PackagePremium, domain.LeadStatusCompleted)
	mk(domain.PackageBeratung, domain.LeadStatusRejected)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 || stats.New != 1 || stats.Contacted != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.Packages[domain.PackagePremium] != 2 || stats.Packages[domain.PackageBeratung] != 1 {
		t.Fatalf("unexpected package counts: %v", stats.Packages)
	}
}
