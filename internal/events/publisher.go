package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types published to the broker.
const (
	TypeRunCompleted       = "run_completed"
	TypeSubmissionReceived = "submission_received"
	TypeItemCompleted      = "item_completed"
)

// Event is the envelope for all published session events.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	ExerciseID int64     `json:"exercise_id,omitempty"`
	ItemID     int64     `json:"item_id,omitempty"`
	CourseID   int64     `json:"course_id,omitempty"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sink abstracts the broker connection so the publisher can be tested
// without a live RabbitMQ.
type Sink interface {
	PublishJSON(ctx context.Context, data any) error
}

// Publisher emits session events. A nil Publisher is valid and drops
// everything, so callers need no enabled checks.
type Publisher struct {
	sink Sink
}

// NewPublisher creates a publisher over the given sink.
func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// RunCompleted emits a run_completed event.
func (p *Publisher) RunCompleted(ctx context.Context, sessionID string, exerciseID int64, success bool) {
	p.publish(ctx, Event{
		Type:       TypeRunCompleted,
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		Success:    success,
	})
}

// SubmissionReceived emits a submission_received event.
func (p *Publisher) SubmissionReceived(ctx context.Context, sessionID string, exerciseID int64, success bool) {
	p.publish(ctx, Event{
		Type:       TypeSubmissionReceived,
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		Success:    success,
	})
}

// ItemCompleted emits an item_completed event after the backend confirms
// progress advanced.
func (p *Publisher) ItemCompleted(ctx context.Context, sessionID string, courseID, itemID int64) {
	p.publish(ctx, Event{
		Type:      TypeItemCompleted,
		SessionID: sessionID,
		CourseID:  courseID,
		ItemID:    itemID,
		Success:   true,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	if p == nil || p.sink == nil {
		return
	}

	ev.ID = uuid.New()
	ev.CreatedAt = time.Now()

	if err := p.sink.PublishJSON(ctx, ev); err != nil {
		slog.Warn("failed to publish event", "type", ev.Type, "session_id", ev.SessionID, "error", err)
		return
	}

	slog.Debug("published event", "type", ev.Type, "session_id", ev.SessionID)
}
