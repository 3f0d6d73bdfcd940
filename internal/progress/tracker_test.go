package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// mockClient implements Client with a monotonic completed set, the way
// the backend enforces it server-side.
type mockClient struct {
	course        *domain.Course
	completed     map[int64]bool
	startCalls    int
	completeCalls int
	startErr      error
	completeErr   error
}

func newMockClient(course *domain.Course) *mockClient {
	return &mockClient{course: course, completed: make(map[int64]bool)}
}

func (m *mockClient) StartCourse(ctx context.Context, courseID int64) error {
	m.startCalls++
	if m.startErr != nil {
		return m.startErr
	}
	if m.course.Progress == nil {
		m.course.Progress = &domain.Progress{Started: true}
	}
	return nil
}

func (m *mockClient) CompleteItem(ctx context.Context, courseID, itemID int64) (*domain.CourseItem, error) {
	m.completeCalls++
	if m.completeErr != nil {
		return nil, m.completeErr
	}

	// Monotonic: adding only, never removing.
	m.completed[itemID] = true

	for i := range m.course.Items {
		if m.course.Items[i].ID == itemID && i+1 < len(m.course.Items) {
			return &m.course.Items[i+1], nil
		}
	}
	return nil, nil
}

func (m *mockClient) GetCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	return m.course, nil
}

func threeItemCourse(progress *domain.Progress) *domain.Course {
	return &domain.Course{
		ID: 1,
		Items: []domain.CourseItem{
			{ID: 100, Order: 1, ContentType: domain.ContentVideo},
			{ID: 101, Order: 2, ContentType: domain.ContentExercise},
			{ID: 102, Order: 3, ContentType: domain.ContentExercise},
		},
		Progress: progress,
	}
}

func TestTracker_Start(t *testing.T) {
	client := newMockClient(threeItemCourse(nil))
	tracker := NewTracker(client)

	course, err := tracker.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if client.startCalls != 1 {
		t.Errorf("start calls = %d, want 1", client.startCalls)
	}
	if course.Progress == nil || !course.Progress.Started {
		t.Error("Start should return refreshed course with started progress")
	}
}

func TestTracker_Start_Failure(t *testing.T) {
	client := newMockClient(threeItemCourse(nil))
	client.startErr = errors.New("server error")
	tracker := NewTracker(client)

	if _, err := tracker.Start(context.Background(), 1); err == nil {
		t.Fatal("Start() should surface the failure")
	}
}

func TestTracker_CompleteItem_ReturnsNext(t *testing.T) {
	client := newMockClient(threeItemCourse(nil))
	tracker := NewTracker(client)

	next, err := tracker.CompleteItem(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("CompleteItem() error = %v", err)
	}
	if next == nil || next.ID != 101 {
		t.Fatalf("next = %+v, want item 101", next)
	}
}

func TestTracker_CompleteItem_LastItemFinishesCourse(t *testing.T) {
	client := newMockClient(threeItemCourse(nil))
	tracker := NewTracker(client)

	next, err := tracker.CompleteItem(context.Background(), 1, 102)
	if err != nil {
		t.Fatalf("CompleteItem() error = %v", err)
	}
	if next != nil {
		t.Errorf("next = %+v, want nil after the last item", next)
	}
}

func TestTracker_CompleteItem_Monotonic(t *testing.T) {
	client := newMockClient(threeItemCourse(nil))
	tracker := NewTracker(client)

	ctx := context.Background()
	if _, err := tracker.CompleteItem(ctx, 1, 100); err != nil {
		t.Fatalf("first CompleteItem() error = %v", err)
	}
	if _, err := tracker.CompleteItem(ctx, 1, 101); err != nil {
		t.Fatalf("second CompleteItem() error = %v", err)
	}
	// Completing 100 again must not remove 101 from the completed set.
	if _, err := tracker.CompleteItem(ctx, 1, 100); err != nil {
		t.Fatalf("repeat CompleteItem() error = %v", err)
	}

	for _, id := range []int64{100, 101} {
		if !client.completed[id] {
			t.Errorf("item %d disappeared from the completed set", id)
		}
	}
}

func TestTracker_Continue_FallbackChain(t *testing.T) {
	tracker := NewTracker(nil)

	tests := []struct {
		name     string
		progress *domain.Progress
		wantID   int64
	}{
		{
			name:     "current item preferred",
			progress: &domain.Progress{CurrentItemID: 101, CompletedItemIDs: []int64{100}},
			wantID:   101,
		},
		{
			name:     "unresolvable current item falls through",
			progress: &domain.Progress{CurrentItemID: 999, CompletedItemIDs: []int64{100}},
			wantID:   101,
		},
		{
			name:     "no current item, first uncompleted",
			progress: &domain.Progress{CompletedItemIDs: []int64{100}},
			wantID:   101,
		},
		{
			name:     "everything completed revisits from the start",
			progress: &domain.Progress{CompletedItemIDs: []int64{100, 101, 102}},
			wantID:   100,
		},
		{
			name:     "no progress at all",
			progress: nil,
			wantID:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := tracker.Continue(threeItemCourse(tt.progress))
			if err != nil {
				t.Fatalf("Continue() error = %v", err)
			}
			if item.ID != tt.wantID {
				t.Errorf("Continue() = item %d, want %d", item.ID, tt.wantID)
			}
		})
	}
}

func TestTracker_Continue_EmptyCourse(t *testing.T) {
	tracker := NewTracker(nil)

	if _, err := tracker.Continue(&domain.Course{}); !errors.Is(err, ErrEmptyCourse) {
		t.Errorf("error = %v, want ErrEmptyCourse", err)
	}
}
