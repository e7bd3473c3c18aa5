// Package vault owns the on-disk note store: flat daily spool files, the
// frontmatter'd daily vault notes, per-entity note files, and generated
// summaries. All files are date-partitioned and append-oriented; the only
// rewrite is the weave cross-link pass, which replaces the whole file in a
// single rename so readers never observe torn content.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/loom/pkg/paths"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

// Entity categories, each backed by a folder of per-entity note files
const (
	KindProject = "Projects"
	KindPerson  = "People"
	KindIdea    = "Ideas"
)

// Store provides access to the spool and vault under a base directory
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the store root
func (s *Store) BaseDir() string {
	return s.baseDir
}

// VaultDir returns the vault root (daily notes + entity folders)
func (s *Store) VaultDir() string {
	return paths.VaultDir(s.baseDir)
}

// DateKey formats a time as the daily key addressing its files
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey parses a YYYY-MM-DD daily key
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// EnsureDirectories creates every directory the store needs. It is
// idempotent and safe to call concurrently.
func (s *Store) EnsureDirectories() error {
	dirs := []string{
		s.baseDir,
		paths.RawDir(s.baseDir),
		paths.DailyDir(s.baseDir),
		paths.SummariesDir(s.baseDir),
		paths.InboxDir(s.baseDir),
		paths.InboxArchiveDir(s.baseDir),
		paths.LogsDir(s.baseDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// SpoolPath returns the flat spool file for a date
func (s *Store) SpoolPath(date time.Time) string {
	return filepath.Join(paths.RawDir(s.baseDir), DateKey(date)+"-spool.txt")
}

// DailyPath returns the vault daily note file for a date
func (s *Store) DailyPath(date time.Time) string {
	return filepath.Join(paths.DailyDir(s.baseDir), DateKey(date)+".md")
}

// SummaryPath returns the summary file for a date
func (s *Store) SummaryPath(date time.Time) string {
	return filepath.Join(paths.SummariesDir(s.baseDir), DateKey(date)+"-summary.md")
}

// AppendSpool appends one timestamped line to the flat spool file for the
// timestamp's date. Empty text (after trimming) is a no-op. The formatted
// line goes out in a single write.
func (s *Store) AppendSpool(text string, timestamp time.Time) (string, error) {
	text = strings.TrimSpace(text)
	path := s.SpoolPath(timestamp)
	if text == "" {
		return path, nil
	}

	if err := s.EnsureDirectories(); err != nil {
		return path, err
	}

	entry := fmt.Sprintf("[%s] %s\n", timestamp.Format(timestampLayout), text)
	return path, appendLine(path, entry)
}

// AppendDaily appends one bullet entry to the vault daily note for the
// timestamp's date, writing the frontmatter header first when the note is
// new, empty, or holds only a bare frontmatter delimiter.
func (s *Store) AppendDaily(text string, timestamp time.Time) (string, error) {
	text = strings.TrimSpace(text)
	path := s.DailyPath(timestamp)
	if text == "" {
		return path, nil
	}

	if err := s.EnsureDirectories(); err != nil {
		return path, err
	}

	entry := fmt.Sprintf("- **[%s]**: %s\n", timestamp.Format(timeLayout), text)

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return path, appendLine(path, frontmatter(timestamp)+entry)
	case err != nil:
		return path, fmt.Errorf("reading daily note %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(existing))
	if trimmed == "" || trimmed == "---" {
		return path, os.WriteFile(path, []byte(frontmatter(timestamp)+entry), 0644)
	}
	return path, appendLine(path, entry)
}

func frontmatter(date time.Time) string {
	return "---\ndate: " + DateKey(date) + "\n---\n\n"
}

// ReadSpool returns the full spool content for a date, or the empty string
// when no spool exists for it.
func (s *Store) ReadSpool(date time.Time) (string, error) {
	return readOptional(s.SpoolPath(date))
}

// ReadDaily returns the full daily note content for a date, or the empty
// string when no note exists for it.
func (s *Store) ReadDaily(date time.Time) (string, error) {
	return readOptional(s.DailyPath(date))
}

// RewriteDaily replaces the daily note for a date with new content. The
// write lands in a temp file first and moves into place with a rename, so a
// concurrent reader sees either the old note or the new one, never a tear.
func (s *Store) RewriteDaily(date time.Time, content string) error {
	path := s.DailyPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating daily directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+DateKey(date)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp note: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp note: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing daily note %s: %w", path, err)
	}
	return nil
}

// WriteSummary writes the rendered summary document for a date, replacing
// any prior summary for the same date.
func (s *Store) WriteSummary(date time.Time, content string) (string, error) {
	if err := s.EnsureDirectories(); err != nil {
		return "", err
	}
	path := s.SummaryPath(date)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing summary %s: %w", path, err)
	}
	return path, nil
}

// EntityPath returns the note file for an entity under its category folder.
// Names are exact-string keyed: no case or whitespace normalization.
func (s *Store) EntityPath(kind, name string) string {
	return filepath.Join(paths.VaultDir(s.baseDir), kind, name+".md")
}

// AppendEntity appends a dated context line to an entity's note file,
// creating the category folder and file on first mention.
func (s *Store) AppendEntity(kind, name string, date time.Time, context string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	path := s.EntityPath(kind, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", kind, err)
	}
	entry := fmt.Sprintf("\n- %s: %s\n", DateKey(date), context)
	return appendLine(path, entry)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return f.Close()
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
