package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// DesktopAdapter shells out to the platform notifier binary.
type DesktopAdapter struct {
	// command overrides the platform default; title and message are passed
	// as the final two arguments
	command []string

	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewDesktopAdapter builds a desktop adapter. An empty command selects the
// platform default (notify-send on Linux, osascript on macOS).
func NewDesktopAdapter(command string) *DesktopAdapter {
	var argv []string
	if trimmed := strings.TrimSpace(command); trimmed != "" {
		argv = strings.Fields(trimmed)
	}
	return &DesktopAdapter{
		command:    argv,
		runCommand: runExec,
	}
}

func runExec(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Name returns the adapter name.
func (d *DesktopAdapter) Name() string {
	return "desktop"
}

// Send displays the notification.
func (d *DesktopAdapter) Send(ctx context.Context, event *Event) error {
	name, args, err := d.buildCommand(event)
	if err != nil {
		return err
	}
	if err := d.runCommand(ctx, name, args...); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

func (d *DesktopAdapter) buildCommand(event *Event) (string, []string, error) {
	if len(d.command) > 0 {
		args := append(append([]string{}, d.command[1:]...), event.Title, event.Message)
		return d.command[0], args, nil
	}

	switch runtime.GOOS {
	case "linux":
		return "notify-send", []string{"--app-name=Loom", event.Title, event.Message}, nil
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", event.Message, event.Title)
		return "osascript", []string{"-e", script}, nil
	default:
		return "", nil, fmt.Errorf("no desktop notifier for %s; set notify.command", runtime.GOOS)
	}
}
