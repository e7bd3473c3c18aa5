// Package status maintains the shared engine status register: a small JSON
// file that any collaborator (tray, CLI, UI) can poll to learn whether the
// engine is idle, busy, or recording, and for which task.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is the coarse engine state
type State string

const (
	StateIdle      State = "idle"
	StateBusy      State = "busy"
	StateRecording State = "recording"
)

// Status describes the currently running job
type Status struct {
	PID       *int    `json:"pid"`
	Status    State   `json:"status"`
	Task      *string `json:"task"`
	StartedAt *string `json:"started_at"`
}

// DefaultStatus is the idle shape readers fall back to
func DefaultStatus() Status {
	return Status{Status: StateIdle}
}

// Register owns the status file. Writes are serialized behind a mutex;
// reads are lock-free and tolerate a missing or torn file.
type Register struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewRegister creates a register backed by the given file
func NewRegister(path string) *Register {
	return &Register{path: path, now: time.Now}
}

// SetClock overrides the wall clock, for tests
func (r *Register) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Read returns the current status. It never fails: a missing or unparsable
// file reads as the default idle status.
func (r *Register) Read() Status {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return DefaultStatus()
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return DefaultStatus()
	}
	if st.Status == "" {
		st.Status = StateIdle
	}
	return st
}

// Write replaces the status file with the given state
func (r *Register) Write(state State, task string, pid int) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := DefaultStatus()
	st.Status = state
	if task != "" {
		st.Task = &task
	}
	if pid != 0 {
		st.PID = &pid
	}
	if state == StateBusy || state == StateRecording {
		started := r.now().Format(time.RFC3339)
		st.StartedAt = &started
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return st, fmt.Errorf("creating status directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return st, fmt.Errorf("marshaling status: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return st, fmt.Errorf("writing status file: %w", err)
	}
	return st, nil
}

// MarkIdle resets the register to the default idle shape
func (r *Register) MarkIdle() error {
	_, err := r.Write(StateIdle, "", 0)
	return err
}

// IsBusy reports whether a job is currently running
func (r *Register) IsBusy() bool {
	st := r.Read()
	return st.Status == StateBusy || st.Status == StateRecording
}

// CurrentTask returns the running task name, if any
func (r *Register) CurrentTask() string {
	st := r.Read()
	if st.Task == nil {
		return ""
	}
	return *st.Task
}
