// Package services – ContentService
//
// ContentService turns a topic into a structured German blog draft via the
// Azure OpenAI chat client. The model is asked for a fixed JSON shape; replies
// that cannot be parsed into it fail with ErrBadGeneration so the handler can
// distinguish "model misbehaved" from transport failures.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jalud/go-leads-backend/internal/ai"
)

// Completer is the chat-completion contract consumed by ContentService.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// Draft tones accepted by GenerateDraft. Anything other than casual is
// treated as professional.
const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
)

const systemPromptTemplate = `Du bist ein SEO-Experte und professioneller Content-Writer für JALUD Premium Autopflege.

Deine Aufgabe:
- Erstelle SEO-optimierte Blog-Beiträge über Autopflege-Themen
- Verwende eine %s Tonalität
- Integriere Keywords natürlich in den Text
- Schreibe für Menschen, nicht nur für Suchmaschinen
- Verwende kurze Absätze (3-5 Sätze) für bessere Lesbarkeit
- Füge praktische Tipps und Handlungsempfehlungen hinzu
- Beantworte W-Fragen (Was, Wie, Warum, Wann)
- Verwende Struktur: Einleitung, Hauptteil (3-5 Absätze), Schluss mit Call-to-Action`

const userPromptFormat = `Erstelle einen informativen Blog-Beitrag zum Thema: "%s"
%s%s
Der Beitrag soll:
1. Einen einprägsamen, SEO-optimierten Titel haben (max. 60 Zeichen)
2. Eine kurze Zusammenfassung (Excerpt) mit 150-200 Zeichen
3. 5-7 ausführliche Absätze Haupttext
4. Praktische Tipps für JALUD-Kunden enthalten
5. Mit einer Handlungsaufforderung enden

Format als JSON:
{
  "title": "SEO-Titel",
  "excerpt": "Kurze Zusammenfassung",
  "paragraphs": ["Absatz 1", "Absatz 2", ...],
  "metaTitle": "SEO Meta-Titel (55-60 Zeichen)",
  "metaDescription": "SEO Meta-Beschreibung (150-160 Zeichen)",
  "suggestedKeywords": ["keyword1", "keyword2", ...]
}`

// GenerateDraftInput carries the editor's generation request.
type GenerateDraftInput struct {
	Topic    string
	Keywords []string
	Category string
	Tone     string
}

// GeneratedDraft is the structured draft returned by the model. The field
// names mirror the JSON shape the prompt demands.
type GeneratedDraft struct {
	Title             string   `json:"title"`
	Excerpt           string   `json:"excerpt"`
	Paragraphs        []string `json:"paragraphs"`
	MetaTitle         string   `json:"metaTitle"`
	MetaDescription   string   `json:"metaDescription"`
	SuggestedKeywords []string `json:"suggestedKeywords"`
}

// ContentService drives AI-assisted draft generation.
type ContentService struct {
	Gen Completer
}

// germanTitle renders user-supplied category labels in German title case for
// the prompt.
var germanTitle = cases.Title(language.German)

// GenerateDraft asks the model for a complete draft on the given topic.
// Returns ErrTopicRequired for an empty topic, ErrGeneratorUnavailable when
// no deployment is configured, and ErrBadGeneration when the reply is not the
// requested JSON shape.
func (s *ContentService) GenerateDraft(ctx context.Context, in GenerateDraftInput) (*GeneratedDraft, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}
	if s.Gen == nil || !s.Gen.Configured() {
		return nil, ErrGeneratorUnavailable
	}

	tone := "professionelle, vertrauenswürdige"
	if in.Tone == ToneCasual {
		tone = "lockere, freundliche"
	}

	var keywordLine, categoryLine string
	if len(in.Keywords) > 0 {
		keywordLine = "\nZielkeywords: " + strings.Join(in.Keywords, ", ") + "\n"
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		categoryLine = "\nKategorie: " + germanTitle.String(c) + "\n"
	}

	reply, err := s.Gen.Complete(ctx, []ai.Message{
		{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, tone)},
		{Role: "user", Content: fmt.Sprintf(userPromptFormat, topic, keywordLine, categoryLine)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	var draft GeneratedDraft
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGeneration, err)
	}
	if strings.TrimSpace(draft.Title) == "" || len(draft.Paragraphs) == 0 {
		return nil, fmt.Errorf("%w: missing title or paragraphs", ErrBadGeneration)
	}
	return &draft, nil
}

// stripCodeFence removes a wrapping Markdown code fence the model sometimes
// adds despite the JSON instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
