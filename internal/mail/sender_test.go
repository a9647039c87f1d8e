package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalud/go-leads-backend/internal/domain"
)

func TestPackageDisplayName(t *testing.T) {
	assert.Equal(t, "Basic-Package", PackageDisplayName("basic"))
	assert.Equal(t, "Premium-Package", PackageDisplayName("premium"))
	assert.Equal(t, "Luxus-Package", PackageDisplayName("luxus"))
	assert.Equal(t, "Individuelle Beratung", PackageDisplayName("beratung"))
	assert.Equal(t, "sonderwunsch", PackageDisplayName("sonderwunsch"))
}

func testLead(message string) *domain.Lead {
	return &domain.Lead{
		ID:        "lead-1",
		FirstName: "Max",
		LastName:  "Mustermann",
		Email:     "max@example.de",
		Phone:     "+49 151 1234567",
		Package:   "beratung",
		Message:   message,
		CreatedAt: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
	}
}

func TestRenderCustomerTemplate(t *testing.T) {
	body, err := renderTemplate(customerTemplate, testLead("Bitte um Rückruf am Nachmittag."))
	require.NoError(t, err)

	assert.Contains(t, body, "Hallo Max Mustermann,")
	assert.Contains(t, body, "Individuelle Beratung")
	assert.Contains(t, body, "max@example.de")
	assert.Contains(t, body, "Bitte um Rückruf am Nachmittag.")
}

func TestRenderCustomerTemplate_NoMessage(t *testing.T) {
	body, err := renderTemplate(customerTemplate, testLead(""))
	require.NoError(t, err)
	assert.NotContains(t, body, "Ihre Nachricht:")
}

func TestRenderAdminTemplate(t *testing.T) {
	body, err := renderTemplate(adminTemplate, testLead("Hallo!"))
	require.NoError(t, err)

	assert.Contains(t, body, "mailto:max@example.de")
	// href context URL-escapes the space characters.
	assert.Contains(t, body, "tel:+49%20151%201234567")
	assert.Contains(t, body, "29.08.2026 14:30")
	assert.Contains(t, body, "Hallo!")
	assert.NotContains(t, body, "Keine Nachricht hinterlassen")
}

func TestRenderAdminTemplate_NoMessage(t *testing.T) {
	body, err := renderTemplate(adminTemplate, testLead(""))
	require.NoError(t, err)
	assert.Contains(t, body, "Keine Nachricht hinterlassen")
}

func TestRenderTemplate_EscapesHTML(t *testing.T) {
	lead := testLead(`<script>alert("x")</script>`)
	body, err := renderTemplate(adminTemplate, lead)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestSender_Configured(t *testing.T) {
	full := NewSender("smtp.strato.de", 465, "info@jalud.de", "pw", "info@jalud.de", "admin@jalud.de")
	assert.True(t, full.Configured())

	assert.False(t, NewSender("", 465, "u", "p", "f", "a").Configured())
	assert.False(t, NewSender("h", 465, "", "p", "f", "a").Configured())
	assert.False(t, NewSender("h", 465, "u", "", "f", "a").Configured())
	assert.False(t, NewSender("h", 465, "u", "p", "", "a").Configured())

	var nilSender *Sender
	assert.False(t, nilSender.Configured())
}

func TestSendLeadAlert_RequiresAdminRecipient(t *testing.T) {
	s := NewSender("smtp.strato.de", 465, "u", "p", "info@jalud.de", "")
	err := s.SendLeadAlert(testLead(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin recipient")
}
