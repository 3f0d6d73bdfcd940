package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockSink struct {
	events []Event
	err    error
}

func (m *mockSink) PublishJSON(_ context.Context, data any) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, data.(Event))
	return nil
}

func TestPublisherRunCompleted(t *testing.T) {
	sink := &mockSink{}
	p := NewPublisher(sink)

	p.RunCompleted(context.Background(), "sess-1", 42, true)

	if len(sink.events) != 1 {
		t.Fatalf("published %d events, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Type != TypeRunCompleted {
		t.Errorf("type = %q, want %q", ev.Type, TypeRunCompleted)
	}
	if ev.ExerciseID != 42 || !ev.Success {
		t.Errorf("event = %+v, want exercise 42 success", ev)
	}
	if ev.ID == uuid.Nil {
		t.Error("event ID should be assigned")
	}
	if ev.CreatedAt.IsZero() {
		t.Error("event CreatedAt should be assigned")
	}
}

func TestPublisherItemCompleted(t *testing.T) {
	sink := &mockSink{}
	p := NewPublisher(sink)

	p.ItemCompleted(context.Background(), "sess-1", 7, 101)

	if len(sink.events) != 1 {
		t.Fatalf("published %d events, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Type != TypeItemCompleted || ev.CourseID != 7 || ev.ItemID != 101 {
		t.Errorf("event = %+v, want item_completed course 7 item 101", ev)
	}
}

func TestPublisherSinkFailureDoesNotPanic(t *testing.T) {
	p := NewPublisher(&mockSink{err: errors.New("broker down")})

	// Must not panic or propagate the error.
	p.SubmissionReceived(context.Background(), "sess-1", 42, false)
}

func TestNilPublisherDropsEvents(t *testing.T) {
	var p *Publisher

	p.RunCompleted(context.Background(), "sess-1", 42, true)
	p.SubmissionReceived(context.Background(), "sess-1", 42, true)
	p.ItemCompleted(context.Background(), "sess-1", 7, 101)
}
