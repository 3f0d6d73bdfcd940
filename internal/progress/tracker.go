// Package progress advances a learner through an ordered course and
// resolves where to resume. Completion state lives on the backend; the
// tracker never recomputes percentages or prunes the completed set.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/academy/internal/domain"
)

var ErrEmptyCourse = errors.New("course has no items")

// Client is the slice of the backend client the tracker needs.
type Client interface {
	StartCourse(ctx context.Context, courseID int64) error
	CompleteItem(ctx context.Context, courseID, itemID int64) (*domain.CourseItem, error)
	GetCourse(ctx context.Context, courseID int64) (*domain.Course, error)
}

// Tracker manages course progression through the backend.
type Tracker struct {
	client Client
}

// NewTracker creates a new progression tracker
func NewTracker(client Client) *Tracker {
	return &Tracker{client: client}
}

// Start initializes progress for a course and returns the refreshed
// course so the caller navigates with current progress. The backend
// treats a second start as a no-op.
func (t *Tracker) Start(ctx context.Context, courseID int64) (*domain.Course, error) {
	if err := t.client.StartCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("start course: %w", err)
	}

	course, err := t.client.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("refresh course: %w", err)
	}
	return course, nil
}

// CompleteItem records completion of an item and returns the next item
// in sequence, or nil when the course is finished. Completion is
// monotonic on the backend; repeating an item never un-completes it.
func (t *Tracker) CompleteItem(ctx context.Context, courseID, itemID int64) (*domain.CourseItem, error) {
	next, err := t.client.CompleteItem(ctx, courseID, itemID)
	if err != nil {
		return nil, fmt.Errorf("complete item %d: %w", itemID, err)
	}

	if next == nil {
		slog.Info("course finished", "course_id", courseID, "last_item_id", itemID)
		return nil, nil
	}
	return next, nil
}

// Continue resolves where the learner should resume, without touching
// the network. The fallback chain is fixed: the backend's current item
// when present and resolvable, else the first item not yet completed,
// else (everything done) the first item for a revisit from the start.
func (t *Tracker) Continue(course *domain.Course) (*domain.CourseItem, error) {
	if course == nil || len(course.Items) == 0 {
		return nil, ErrEmptyCourse
	}

	p := course.Progress
	if p != nil && p.CurrentItemID != 0 {
		if item := course.ItemByID(p.CurrentItemID); item != nil {
			return item, nil
		}
	}

	for i := range course.Items {
		if !p.ItemCompleted(course.Items[i].ID) {
			return &course.Items[i], nil
		}
	}

	return &course.Items[0], nil
}
