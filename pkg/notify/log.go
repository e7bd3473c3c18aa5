package notify

import (
	"context"

	"github.com/odvcencio/loom/pkg/logging"
)

// LogAdapter records notifications in the structured engine log. It backs
// up the desktop adapter so a notification is never silently lost.
type LogAdapter struct {
	logger *logging.Logger
}

// NewLogAdapter builds a log adapter.
func NewLogAdapter(logger *logging.Logger) *LogAdapter {
	return &LogAdapter{logger: logger}
}

// Name returns the adapter name.
func (l *LogAdapter) Name() string {
	return "log"
}

// Send records the event.
func (l *LogAdapter) Send(ctx context.Context, event *Event) error {
	if l.logger == nil {
		return nil
	}
	level := logging.LevelInfo
	if event.Type == EventError {
		level = logging.LevelError
	}
	return l.logger.Log(logging.Event{
		Level:     level,
		Category:  logging.CategoryEngine,
		EventType: "notification",
		Message:   event.Title + ": " + event.Message,
		Details:   map[string]any{"notification_id": event.ID, "notification_type": string(event.Type)},
	})
}
