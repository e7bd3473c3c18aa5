package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAdapter struct {
	name   string
	err    error
	events []*Event
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Send(_ context.Context, event *Event) error {
	a.events = append(a.events, event)
	return a.err
}

func TestManagerFansOutToAllAdapters(t *testing.T) {
	first := &fakeAdapter{name: "first"}
	second := &fakeAdapter{name: "second"}
	manager := NewManager(first, second)

	if err := manager.Notify(context.Background(), "Title", "Message"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	for _, adapter := range []*fakeAdapter{first, second} {
		if len(adapter.events) != 1 {
			t.Fatalf("%s received %d events, want 1", adapter.name, len(adapter.events))
		}
		event := adapter.events[0]
		if event.Type != EventComplete {
			t.Errorf("event type = %q, want %q", event.Type, EventComplete)
		}
		if event.Title != "Title" || event.Message != "Message" {
			t.Errorf("event = %+v", event)
		}
		if event.ID == "" {
			t.Error("event ID must be set")
		}
	}
}

func TestManagerContinuesPastFailure(t *testing.T) {
	failing := &fakeAdapter{name: "broken", err: errors.New("no display")}
	working := &fakeAdapter{name: "log"}
	manager := NewManager(failing, working)

	err := manager.Notify(context.Background(), "Title", "Message")
	if err == nil {
		t.Fatal("expected last adapter error to surface")
	}
	if len(working.events) != 1 {
		t.Errorf("later adapter received %d events, want 1", len(working.events))
	}
}

func TestManagerNoAdapters(t *testing.T) {
	manager := NewManager()
	if err := manager.Notify(context.Background(), "Title", "Message"); err != nil {
		t.Errorf("Notify with no adapters: %v", err)
	}
}

func TestNotifyErrorUsesErrorType(t *testing.T) {
	adapter := &fakeAdapter{name: "sink"}
	manager := NewManager(adapter)

	if err := manager.NotifyError(context.Background(), "Loom Error", "boom"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if adapter.events[0].Type != EventError {
		t.Errorf("event type = %q, want %q", adapter.events[0].Type, EventError)
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	event := &Event{
		ID:        "abc-123",
		Type:      EventComplete,
		Title:     "Loom Daily Summary Ready",
		Message:   "Your summary for 2025-03-14 is ready!",
		Timestamp: time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC),
	}

	parsed, err := ParseEvent(event.JSON())
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if parsed.ID != event.ID || parsed.Type != event.Type || parsed.Title != event.Title || parsed.Message != event.Message {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	if _, err := ParseEvent([]byte("not json")); err == nil {
		t.Error("expected error")
	}
}
