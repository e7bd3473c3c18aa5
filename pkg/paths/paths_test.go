package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLoomHome, dir)

	if got := BaseDir(); got != dir {
		t.Errorf("BaseDir = %q, want %q", got, dir)
	}
}

func TestBaseDirDefaultsToHomeDotLoom(t *testing.T) {
	t.Setenv(EnvLoomHome, "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	if got, want := BaseDir(), filepath.Join(home, ".loom"); got != want {
		t.Errorf("BaseDir = %q, want %q", got, want)
	}
}

func TestBaseDirExpandsTilde(t *testing.T) {
	t.Setenv(EnvLoomHome, "~/loom-home")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	if got, want := BaseDir(), filepath.Join(home, "loom-home"); got != want {
		t.Errorf("BaseDir = %q, want %q", got, want)
	}
}

func TestLayout(t *testing.T) {
	base := filepath.Join("some", "base")

	cases := []struct {
		got  string
		want string
	}{
		{RawDir(base), filepath.Join(base, "raw")},
		{VaultDir(base), filepath.Join(base, "vault")},
		{DailyDir(base), filepath.Join(base, "vault", "Daily")},
		{SummariesDir(base), filepath.Join(base, "summaries")},
		{InboxDir(base), filepath.Join(base, "inbox")},
		{InboxArchiveDir(base), filepath.Join(base, "inbox", "archive")},
		{LogsDir(base), filepath.Join(base, "logs")},
		{StatusFile(base), filepath.Join(base, "engine_status.json")},
		{ConfigFile(base), filepath.Join(base, "config.yaml")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
