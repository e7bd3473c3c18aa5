// Package notify delivers user-facing notifications. The engine signals
// through it when a summary is ready or a job has terminally failed; where
// the notification lands (desktop popup, log line) is an adapter concern.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of notification event.
type EventType string

const (
	// EventComplete is sent when a job finishes successfully
	EventComplete EventType = "complete"

	// EventError is sent on terminal failures
	EventError EventType = "error"

	// EventProgress is sent for phase updates
	EventProgress EventType = "progress"
)

// Event is a notification event.
type Event struct {
	// ID is the unique event identifier
	ID string `json:"id"`

	// Type is the event type
	Type EventType `json:"type"`

	// Title is a short summary
	Title string `json:"title"`

	// Message is the detailed message
	Message string `json:"message"`

	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
}

// JSON serializes the event.
func (e *Event) JSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// ParseEvent deserializes an event.
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	return &event, nil
}

// Adapter sends notifications to a specific channel.
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// Send sends a notification
	Send(ctx context.Context, event *Event) error
}

// Manager fans notifications out to every configured adapter.
type Manager struct {
	adapters []Adapter
}

// NewManager creates a notification manager.
func NewManager(adapters ...Adapter) *Manager {
	return &Manager{adapters: adapters}
}

// Notify sends an event via all adapters. One adapter failing does not stop
// the others; the last failure is returned.
func (m *Manager) Notify(ctx context.Context, title, message string) error {
	return m.send(ctx, EventComplete, title, message)
}

// NotifyError sends a terminal failure notification.
func (m *Manager) NotifyError(ctx context.Context, title, message string) error {
	return m.send(ctx, EventError, title, message)
}

func (m *Manager) send(ctx context.Context, eventType EventType, title, message string) error {
	event := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}

	var lastErr error
	for _, adapter := range m.adapters {
		if err := adapter.Send(ctx, event); err != nil {
			lastErr = fmt.Errorf("%s: %w", adapter.Name(), err)
		}
	}
	return lastErr
}
