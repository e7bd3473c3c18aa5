package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const EnvLoomHome = "LOOM_HOME"

// BaseDir resolves the loom home directory. LOOM_HOME wins when set,
// otherwise ~/.loom.
func BaseDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvLoomHome)); dir != "" {
		return filepath.Clean(expandHomePath(dir))
	}
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ".loom"
	}
	return filepath.Join(home, ".loom")
}

// RawDir holds the flat daily spool files.
func RawDir(base string) string {
	return filepath.Join(base, "raw")
}

// VaultDir is the root of the linked note collection.
func VaultDir(base string) string {
	return filepath.Join(base, "vault")
}

// DailyDir holds the per-date vault notes.
func DailyDir(base string) string {
	return filepath.Join(VaultDir(base), "Daily")
}

// SummariesDir holds generated daily summaries.
func SummariesDir(base string) string {
	return filepath.Join(base, "summaries")
}

// InboxDir is where the transcription collaborator drops finished transcripts.
func InboxDir(base string) string {
	return filepath.Join(base, "inbox")
}

// InboxArchiveDir holds transcripts that have already been spooled.
func InboxArchiveDir(base string) string {
	return filepath.Join(InboxDir(base), "archive")
}

// LogsDir holds the structured engine logs.
func LogsDir(base string) string {
	return filepath.Join(base, "logs")
}

// StatusFile is the shared engine status register.
func StatusFile(base string) string {
	return filepath.Join(base, "engine_status.json")
}

// ConfigFile is the yaml configuration file.
func ConfigFile(base string) string {
	return filepath.Join(base, "config.yaml")
}

func expandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}
