package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/loom/pkg/config"
	"github.com/odvcencio/loom/pkg/paths"
	"github.com/odvcencio/loom/pkg/status"
	"github.com/odvcencio/loom/pkg/vault"
)

type fakeModel struct {
	available bool
	err       error
	// respond maps a prompt substring to the canned response
	respond map[string]string
	prompts []string
}

func (m *fakeModel) Generate(_ context.Context, prompt, _ string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	for marker, response := range m.respond {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "ok", nil
}

func (m *fakeModel) IsAvailable(_ context.Context) bool { return m.available }

type fakeNotifier struct {
	titles   []string
	messages []string
	errors   []string
}

func (n *fakeNotifier) Notify(_ context.Context, title, message string) error {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return nil
}

func (n *fakeNotifier) NotifyError(_ context.Context, title, message string) error {
	n.errors = append(n.errors, title+": "+message)
	return nil
}

type fixedTranscriber struct {
	text string
	err  error
}

func (t *fixedTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return t.text, t.err
}

func newTestEngine(t *testing.T, llm *fakeModel) (*Engine, *fakeNotifier, *bytes.Buffer) {
	t.Helper()
	base := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.BaseDir = base

	store := vault.NewStore(base)
	require.NoError(t, store.EnsureDirectories())

	register := status.NewRegister(paths.StatusFile(base))
	notifier := &fakeNotifier{}

	e := New(cfg, store, register, llm, notifier, nil)
	var out bytes.Buffer
	e.SetOutput(&out)
	e.SetClock(func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)
	})
	return e, notifier, &out
}

func TestIngestTranscriptWritesSpoolAndDaily(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	path, err := e.IngestTranscript(context.Background(), "remember to water the plants")
	require.NoError(t, err)
	require.Equal(t, e.Store().SpoolPath(date), path)

	spool, err := e.Store().ReadSpool(date)
	require.NoError(t, err)
	assert.Equal(t, "[2025-03-14 09:30:05] remember to water the plants\n", spool)

	daily, err := e.Store().ReadDaily(date)
	require.NoError(t, err)
	assert.Contains(t, daily, "- **[09:30:05]**: remember to water the plants\n")
}

func TestIngestTranscriptBlankIsNoOp(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})

	path, err := e.IngestTranscript(context.Background(), "   \n\t")
	require.NoError(t, err)
	assert.Empty(t, path)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	_, statErr := os.Stat(e.Store().SpoolPath(date))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngestTranscriptLeavesRegisterIdle(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})

	_, err := e.IngestTranscript(context.Background(), "a thought")
	require.NoError(t, err)

	register := status.NewRegister(paths.StatusFile(e.Config().BaseDir))
	assert.False(t, register.IsBusy())
}

func TestProcessRecordingIngestsTranscription(t *testing.T) {
	e, _, out := newTestEngine(t, &fakeModel{})

	path, err := e.ProcessRecording(context.Background(), &fixedTranscriber{text: "note from audio"}, "/tmp/rec.wav")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Contains(t, out.String(), "Transcribing...")
	assert.Contains(t, out.String(), "Transcription saved to: "+path)
}

func TestProcessRecordingEmptyTranscription(t *testing.T) {
	e, _, out := newTestEngine(t, &fakeModel{})

	path, err := e.ProcessRecording(context.Background(), &fixedTranscriber{text: "  "}, "/tmp/rec.wav")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Contains(t, out.String(), "No text transcribed.")
}

func TestProcessRecordingTranscriberError(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})

	_, err := e.ProcessRecording(context.Background(), &fixedTranscriber{err: errors.New("whisper crashed")}, "/tmp/rec.wav")
	require.Error(t, err)
}

func TestWeaveNoContent(t *testing.T) {
	e, _, out := newTestEngine(t, &fakeModel{available: true})

	e.Weave(context.Background(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, out.String(), "No content to weave.")
	assert.NotContains(t, out.String(), "Extracting entities...")
}

func TestWeaveBackendUnavailable(t *testing.T) {
	e, _, out := newTestEngine(t, &fakeModel{available: false})

	_, err := e.IngestTranscript(context.Background(), "met Alice")
	require.NoError(t, err)

	e.Weave(context.Background(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, out.String(), "Ollama not available. Install and run 'ollama serve'.")
}

func TestWeaveCrossLinksAndPersists(t *testing.T) {
	llm := &fakeModel{
		available: true,
		respond: map[string]string{
			"extract any mentioned": `{"projects":[],"people":[{"name":"Alice","context":"met today"}],"ideas":[]}`,
		},
	}
	e, _, out := newTestEngine(t, llm)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	_, err := e.IngestTranscript(context.Background(), "Talked to Alice about the roadmap.")
	require.NoError(t, err)

	e.Weave(context.Background(), date)

	assert.Contains(t, out.String(), "Weave complete!")

	daily, err := e.Store().ReadDaily(date)
	require.NoError(t, err)
	assert.Contains(t, daily, "[[Alice]]")

	data, err := os.ReadFile(e.Store().EntityPath(vault.KindPerson, "Alice"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "- 2025-03-14: met today")
}

func TestWeaveModelErrorIsPrintedNotFatal(t *testing.T) {
	llm := &fakeModel{available: true, err: errors.New("connection reset")}
	e, _, out := newTestEngine(t, llm)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	_, err := e.IngestTranscript(context.Background(), "met Alice")
	require.NoError(t, err)

	e.Weave(context.Background(), date)
	assert.Contains(t, out.String(), "Weave failed:")
}

func TestSummarizeNotifiesOnSuccess(t *testing.T) {
	llm := &fakeModel{available: true, respond: map[string]string{
		"Journal Entries":       "- Watered the plants",
		"ONLY the action items": "- [ ] Buy soil",
		"ONLY technical ideas":  "None found.",
	}}
	e, notifier, _ := newTestEngine(t, llm)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	_, err := e.IngestTranscript(context.Background(), "watered the plants, need soil")
	require.NoError(t, err)

	path, err := e.Summarize(context.Background(), date)
	require.NoError(t, err)
	require.Equal(t, e.Store().SummaryPath(date), path)

	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Loom Daily Summary Ready", notifier.titles[0])
	assert.Equal(t, "Your summary for 2025-03-14 is ready!", notifier.messages[0])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Daily Summary - 2025-03-14")
}

func TestSummarizeEmptyDayFails(t *testing.T) {
	e, notifier, _ := newTestEngine(t, &fakeModel{available: true})

	_, err := e.Summarize(context.Background(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Empty(t, notifier.titles)
}

func TestSummaryJobUsesEngineClock(t *testing.T) {
	llm := &fakeModel{available: true}
	e, _, _ := newTestEngine(t, llm)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	_, err := e.IngestTranscript(context.Background(), "a full day of notes")
	require.NoError(t, err)

	require.NoError(t, e.SummaryJob(context.Background()))

	_, statErr := os.Stat(e.Store().SummaryPath(date))
	require.NoError(t, statErr)
}

func TestAskNoContext(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{available: true})

	answer, err := e.Ask(context.Background(), "anything about quasars?")
	require.NoError(t, err)
	assert.Equal(t, "No relevant context found in vault.", answer)
}

func TestAskBackendUnavailable(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{available: false})

	_, err := e.IngestTranscript(context.Background(), "discussed quasars at length")
	require.NoError(t, err)

	answer, err := e.Ask(context.Background(), "what about quasars?")
	require.NoError(t, err)
	assert.Equal(t, "Ollama not available. Please install and run 'ollama serve'.", answer)
}

func TestAskEmbedsVaultContext(t *testing.T) {
	llm := &fakeModel{available: true, respond: map[string]string{
		"answer their question": "You discussed quasars on the 14th.",
	}}
	e, _, _ := newTestEngine(t, llm)

	_, err := e.IngestTranscript(context.Background(), "discussed quasars at length")
	require.NoError(t, err)

	answer, err := e.Ask(context.Background(), "what about quasars?")
	require.NoError(t, err)
	assert.Equal(t, "You discussed quasars on the 14th.", answer)

	require.NotEmpty(t, llm.prompts)
	last := llm.prompts[len(llm.prompts)-1]
	assert.Contains(t, last, "discussed quasars at length")
	assert.Contains(t, last, "what about quasars?")
}

func TestAskModelErrorPropagates(t *testing.T) {
	llm := &fakeModel{available: true, err: errors.New("timeout")}
	e, _, _ := newTestEngine(t, llm)

	_, err := e.IngestTranscript(context.Background(), "discussed quasars at length")
	require.NoError(t, err)

	_, err = e.Ask(context.Background(), "what about quasars?")
	require.Error(t, err)
}

func TestIngestInboxFileArchivesTranscript(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})
	base := e.Config().BaseDir

	dropped := fmt.Sprintf("%s/note.txt", paths.InboxDir(base))
	require.NoError(t, os.WriteFile(dropped, []byte("inbox thought"), 0o644))

	e.ingestInboxFile(context.Background(), dropped)

	_, err := os.Stat(dropped)
	assert.True(t, os.IsNotExist(err), "original transcript should be moved")

	entries, err := os.ReadDir(paths.InboxArchiveDir(base))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "-note.txt"))

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	spool, err := e.Store().ReadSpool(date)
	require.NoError(t, err)
	assert.Contains(t, spool, "inbox thought")
}

func TestSweepInboxIngestsOnlyTranscripts(t *testing.T) {
	e, _, _ := newTestEngine(t, &fakeModel{})
	base := e.Config().BaseDir
	inbox := paths.InboxDir(base)

	require.NoError(t, os.WriteFile(fmt.Sprintf("%s/a.txt", inbox), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(fmt.Sprintf("%s/b.wav", inbox), []byte("audio"), 0o644))

	require.NoError(t, e.sweepInbox(context.Background(), inbox))

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	spool, err := e.Store().ReadSpool(date)
	require.NoError(t, err)
	assert.Contains(t, spool, "first")
	assert.NotContains(t, spool, "audio")

	_, err = os.Stat(fmt.Sprintf("%s/b.wav", inbox))
	assert.NoError(t, err, "non-transcript files stay put")
}

func TestArchiveName(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, "20250314-093005-note.txt", archiveName("/some/inbox/note.txt", now))
}

func TestIsTranscript(t *testing.T) {
	assert.True(t, isTranscript("/inbox/note.txt"))
	assert.True(t, isTranscript("NOTE.TXT"))
	assert.False(t, isTranscript("/inbox/clip.wav"))
	assert.False(t, isTranscript("archive"))
}
