// Package summarize distills a day's spool content into a structured
// Markdown report via three independent language-model queries.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/loom/pkg/vault"
)

// ErrNoContent is returned when the requested date has nothing to summarize.
// Callers decide whether that is terminal or skippable.
var ErrNoContent = errors.New("no content found for date")

// Querier is the language-model seam used for summarization
type Querier interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Summary holds the three raw query results for one date
type Summary struct {
	Journal        string
	ActionItems    string
	TechnicalIdeas string
}

// Summarizer reads a day's content and renders its summary report
type Summarizer struct {
	store *vault.Store
	llm   Querier
}

// NewSummarizer creates a summarizer over the given store and model client
func NewSummarizer(store *vault.Store, llm Querier) *Summarizer {
	return &Summarizer{store: store, llm: llm}
}

// Summarize issues the three extraction queries for the given content. The
// queries run concurrently; assembly order is fixed regardless of which
// finishes first.
func (s *Summarizer) Summarize(ctx context.Context, content string) (Summary, error) {
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.llm.Generate(gctx, JournalPrompt(content), SystemPrompt)
		if err != nil {
			return fmt.Errorf("journal query: %w", err)
		}
		summary.Journal = out
		return nil
	})
	g.Go(func() error {
		out, err := s.llm.Generate(gctx, ActionItemsPrompt(content), SystemPrompt)
		if err != nil {
			return fmt.Errorf("action items query: %w", err)
		}
		summary.ActionItems = out
		return nil
	})
	g.Go(func() error {
		out, err := s.llm.Generate(gctx, TechnicalIdeasPrompt(content), SystemPrompt)
		if err != nil {
			return fmt.Errorf("technical ideas query: %w", err)
		}
		summary.TechnicalIdeas = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// GenerateMarkdown renders a summary as the fixed four-section document
func GenerateMarkdown(summary Summary, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Summary - %s\n\n", vault.DateKey(date))

	b.WriteString("## Journal Entries\n")
	b.WriteString(orDefault(summary.Journal, "No journal entries."))
	b.WriteString("\n\n")

	b.WriteString("## Action Items\n")
	b.WriteString(orDefault(summary.ActionItems, "No action items."))
	b.WriteString("\n\n")

	b.WriteString("## Technical Ideas\n")
	b.WriteString(orDefault(summary.TechnicalIdeas, "No technical ideas."))
	b.WriteString("\n")

	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// SummarizeDate generates and persists the summary for a date, returning the
// summary file path. The spool is the primary source; installs that write
// only vault daily notes fall back to those. An empty day fails with
// ErrNoContent and writes nothing.
func (s *Summarizer) SummarizeDate(ctx context.Context, date time.Time) (string, error) {
	content, err := s.store.ReadSpool(date)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		content, err = s.store.ReadDaily(date)
		if err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w %s", ErrNoContent, vault.DateKey(date))
	}

	summary, err := s.Summarize(ctx, content)
	if err != nil {
		return "", err
	}

	markdown := GenerateMarkdown(summary, date)
	return s.store.WriteSummary(date, markdown)
}
