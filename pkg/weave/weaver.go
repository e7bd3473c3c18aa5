// Package weave turns a day's raw notes into linked vault knowledge: it
// extracts named projects, people, and ideas with one language-model query,
// rewrites the daily note with wiki-links, and appends each mention to the
// entity's own note file.
package weave

import (
	"context"
	"fmt"
	"time"

	"github.com/odvcencio/loom/pkg/vault"
)

// SystemPrompt frames the extraction query
const SystemPrompt = `You are a helpful AI assistant that helps organize thoughts into a knowledge graph.
You extract structured information from unstructured text and respond in JSON format.`

const extractionPromptTemplate = `Analyze the following daily notes and extract any mentioned:
1. Projects - any work projects, personal projects, or ongoing tasks
2. People - any people mentioned (colleagues, friends, family)
3. Ideas - any ideas, concepts, or thoughts

Respond ONLY with valid JSON in this format:
{
    "projects": [{"name": "project name", "context": "brief context"}],
    "people": [{"name": "person name", "context": "brief context"}],
    "ideas": [{"name": "idea", "context": "brief context"}]
}

If nothing found, respond with empty arrays:
{"projects": [], "people": [], "ideas": []}

Daily notes:
%s`

// ExtractionPrompt builds the entity extraction prompt for a day's content
func ExtractionPrompt(dailyContent string) string {
	return fmt.Sprintf(extractionPromptTemplate, dailyContent)
}

// Querier is the language-model seam used for extraction
type Querier interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Weaver runs the extract / link / persist cycle for a date
type Weaver struct {
	store *vault.Store
	llm   Querier
}

// NewWeaver creates a weaver over the given store and model client
func NewWeaver(store *vault.Store, llm Querier) *Weaver {
	return &Weaver{store: store, llm: llm}
}

// Extract issues the extraction query and parses the response. Malformed
// model output degrades to the empty bundle rather than failing.
func (w *Weaver) Extract(ctx context.Context, dailyContent string) (Bundle, error) {
	raw, err := w.llm.Generate(ctx, ExtractionPrompt(dailyContent), SystemPrompt)
	if err != nil {
		return EmptyBundle(), fmt.Errorf("extraction query: %w", err)
	}
	bundle, _ := ParseBundle(raw)
	return bundle, nil
}

// Link rewrites the daily note for a date with cross-links for every project
// and person in the bundle. A missing note is left alone.
func (w *Weaver) Link(date time.Time, content string, bundle Bundle) error {
	linked := CrossLink(content, bundle)
	if linked == content {
		return nil
	}
	return w.store.RewriteDaily(date, linked)
}

// Persist appends each entity's context to its note file under the matching
// category folder. Entries with a blank name are skipped.
func (w *Weaver) Persist(date time.Time, bundle Bundle) error {
	categories := []struct {
		kind     string
		entities []Entity
	}{
		{vault.KindProject, bundle.Projects},
		{vault.KindPerson, bundle.People},
		{vault.KindIdea, bundle.Ideas},
	}
	for _, cat := range categories {
		for _, entity := range cat.entities {
			if err := w.store.AppendEntity(cat.kind, entity.Name, date, entity.Context); err != nil {
				return fmt.Errorf("persisting %s %q: %w", cat.kind, entity.Name, err)
			}
		}
	}
	return nil
}

// Weave runs a full cycle for the date: extract, then link, then persist,
// strictly in that order. The returned bundle is what was extracted.
func (w *Weaver) Weave(ctx context.Context, date time.Time, content string) (Bundle, error) {
	bundle, err := w.Extract(ctx, content)
	if err != nil {
		return EmptyBundle(), err
	}
	if err := w.Link(date, content, bundle); err != nil {
		return bundle, fmt.Errorf("linking daily note: %w", err)
	}
	if err := w.Persist(date, bundle); err != nil {
		return bundle, err
	}
	return bundle, nil
}
