// Package engine wires the leaf components into the ingestion and
// distillation operations the CLI and daemon expose. Construction is
// explicit: the engine owns no globals, and every collaborator arrives
// through its constructor so the core runs against fakes in tests.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/loom/pkg/config"
	"github.com/odvcencio/loom/pkg/logging"
	"github.com/odvcencio/loom/pkg/search"
	"github.com/odvcencio/loom/pkg/status"
	"github.com/odvcencio/loom/pkg/summarize"
	"github.com/odvcencio/loom/pkg/vault"
	"github.com/odvcencio/loom/pkg/weave"
)

// LanguageModel is the inference backend seam
type LanguageModel interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	IsAvailable(ctx context.Context) bool
}

// Notifier delivers user-facing notifications
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
	NotifyError(ctx context.Context, title, message string) error
}

// Transcriber converts a finished recording into text. The implementation
// lives outside the core; the engine only consumes the result.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Engine coordinates the spool, vault, model, and status register
type Engine struct {
	cfg        *config.Config
	store      *vault.Store
	register   *status.Register
	llm        LanguageModel
	summarizer *summarize.Summarizer
	weaver     *weave.Weaver
	notifier   Notifier
	logger     *logging.Logger

	out io.Writer
	now func() time.Time
	pid int
}

// New constructs an engine over explicit collaborators
func New(cfg *config.Config, store *vault.Store, register *status.Register, llm LanguageModel, notifier Notifier, logger *logging.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		store:      store,
		register:   register,
		llm:        llm,
		summarizer: summarize.NewSummarizer(store, llm),
		weaver:     weave.NewWeaver(store, llm),
		notifier:   notifier,
		logger:     logger,
		out:        os.Stdout,
		now:        time.Now,
		pid:        os.Getpid(),
	}
}

// SetOutput redirects the status lines the engine prints
func (e *Engine) SetOutput(w io.Writer) {
	if w != nil {
		e.out = w
	}
}

// SetClock overrides the wall clock, for tests
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Store exposes the underlying vault store
func (e *Engine) Store() *vault.Store {
	return e.store
}

// Config exposes the runtime configuration
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// IngestTranscript appends transcribed text to both the flat spool and the
// vault daily note. Blank text is a benign no-op.
func (e *Engine) IngestTranscript(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	e.register.Write(status.StateBusy, "spool", e.pid)
	defer e.register.MarkIdle()

	now := e.now()
	spoolPath, err := e.store.AppendSpool(text, now)
	if err != nil {
		e.logStoreError("spool_append_failed", err)
		return "", err
	}
	if _, err := e.store.AppendDaily(text, now); err != nil {
		e.logStoreError("daily_append_failed", err)
		return spoolPath, err
	}

	if e.logger != nil {
		e.logger.Info(logging.CategorySpool, "appended", "transcript spooled", map[string]any{
			"path":  spoolPath,
			"chars": len(text),
		})
	}
	return spoolPath, nil
}

// ProcessRecording transcribes a finished recording and ingests the result.
func (e *Engine) ProcessRecording(ctx context.Context, transcriber Transcriber, audioPath string) (string, error) {
	fmt.Fprintln(e.out, "Transcribing...")
	text, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", audioPath, err)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(e.out, "No text transcribed.")
		return "", nil
	}
	path, err := e.IngestTranscript(ctx, text)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(e.out, "Transcription saved to: %s\n", path)
	return path, nil
}

// Weave runs the entity extraction cycle for a date. Failures inside the
// cycle surface as printed messages, never as a crash of the caller.
func (e *Engine) Weave(ctx context.Context, date time.Time) {
	e.register.Write(status.StateBusy, "weave", e.pid)
	defer e.register.MarkIdle()

	fmt.Fprintln(e.out, "Starting weave...")

	content, err := e.store.ReadDaily(date)
	if err != nil {
		fmt.Fprintf(e.out, "Weave failed: %v\n", err)
		e.logWeaveError(err)
		return
	}
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(e.out, "No content to weave.")
		return
	}

	if !e.llm.IsAvailable(ctx) {
		fmt.Fprintln(e.out, "Ollama not available. Install and run 'ollama serve'.")
		return
	}

	fmt.Fprintln(e.out, "Extracting entities...")
	bundle, err := e.weaver.Weave(ctx, date, content)
	if err != nil {
		fmt.Fprintf(e.out, "Weave failed: %v\n", err)
		e.logWeaveError(err)
		return
	}

	if e.logger != nil {
		e.logger.Info(logging.CategoryWeave, "complete", "weave finished", map[string]any{
			"date":     vault.DateKey(date),
			"projects": len(bundle.Projects),
			"people":   len(bundle.People),
			"ideas":    len(bundle.Ideas),
		})
	}
	fmt.Fprintln(e.out, "Weave complete!")
}

// Summarize generates and saves the summary for a date, announcing success
// through the notifier. The error is returned for the scheduler's retry
// policy to judge.
func (e *Engine) Summarize(ctx context.Context, date time.Time) (string, error) {
	e.register.Write(status.StateBusy, "summary", e.pid)
	defer e.register.MarkIdle()

	path, err := e.summarizer.SummarizeDate(ctx, date)
	if err != nil {
		if e.logger != nil {
			e.logger.Error(logging.CategorySummary, "failed", err.Error(), map[string]any{
				"date": vault.DateKey(date),
			})
		}
		return "", err
	}

	if e.logger != nil {
		e.logger.Info(logging.CategorySummary, "saved", "summary written", map[string]any{
			"date": vault.DateKey(date),
			"path": path,
		})
	}
	if e.notifier != nil {
		key := vault.DateKey(date)
		if err := e.notifier.Notify(ctx, "Loom Daily Summary Ready", fmt.Sprintf("Your summary for %s is ready!", key)); err != nil && e.logger != nil {
			e.logger.Warn(logging.CategorySummary, "notify_failed", err.Error(), nil)
		}
	}
	return path, nil
}

// SummaryJob is the scheduler entry point: summarize the current date.
func (e *Engine) SummaryJob(ctx context.Context) error {
	_, err := e.Summarize(ctx, e.now())
	return err
}

// Ask answers a question against the vault. Missing context and an
// unavailable backend are answers, not errors.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	e.register.Write(status.StateBusy, "ask", e.pid)
	defer e.register.MarkIdle()

	vaultContext := search.Search(question, e.store.VaultDir())
	if vaultContext == "" {
		return "No relevant context found in vault.", nil
	}

	if !e.llm.IsAvailable(ctx) {
		return "Ollama not available. Please install and run 'ollama serve'.", nil
	}

	answer, err := e.llm.Generate(ctx, AskVaultPrompt(vaultContext, question), weave.SystemPrompt)
	if err != nil {
		if e.logger != nil {
			e.logger.Error(logging.CategorySearch, "ask_failed", err.Error(), nil)
		}
		return "", fmt.Errorf("querying vault: %w", err)
	}
	return answer, nil
}

func (e *Engine) logStoreError(eventType string, err error) {
	if e.logger != nil {
		e.logger.Error(logging.CategoryVault, eventType, err.Error(), nil)
	}
}

func (e *Engine) logWeaveError(err error) {
	if e.logger != nil {
		e.logger.Error(logging.CategoryWeave, "failed", err.Error(), nil)
	}
}
