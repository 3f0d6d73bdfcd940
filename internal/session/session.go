// Package session owns the lifecycle of a single exercise attempt: the code
// buffer, the run/submit/solution flows, and the completion prompt.
package session

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/academy/internal/domain"
	"github.com/felixgeelhaar/academy/internal/preview"
	"github.com/google/uuid"
)

// State represents the session lifecycle state.
type State string

const (
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateRunning         State = "running"
	StateSubmitting      State = "submitting"
	StateViewingSolution State = "viewing_solution"
	StateLoadFailed      State = "load_failed"
)

// Session represents an active exercise attempt. The code buffer lives in
// memory only; deleting the session or restarting the daemon discards it.
type Session struct {
	mu sync.Mutex

	id       string
	courseID int64
	itemID   int64

	state    State
	item     *domain.CourseItem
	exercise *domain.Exercise
	code     string

	lastRun        *domain.ExecutionResult
	lastSubmission *domain.SubmissionResult
	solution       string

	completionPending bool
	nextItem          *domain.CourseItem

	// Monotonic per-action sequence numbers. A response is applied only if
	// no newer request was issued in the meantime.
	runSeq    uint64
	submitSeq uint64

	previewDoc *preview.Document
	refresher  *preview.Refresher

	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is a point-in-time serializable view of a session.
type Snapshot struct {
	ID                string                   `json:"id"`
	CourseID          int64                    `json:"course_id"`
	ItemID            int64                    `json:"item_id"`
	State             State                    `json:"state"`
	Exercise          *domain.Exercise         `json:"exercise,omitempty"`
	Code              string                   `json:"code"`
	LastRun           *domain.ExecutionResult  `json:"last_run,omitempty"`
	LastSubmission    *domain.SubmissionResult `json:"last_submission,omitempty"`
	Solution          string                   `json:"solution,omitempty"`
	CompletionPending bool                     `json:"completion_pending"`
	NextItem          *domain.CourseItem       `json:"next_item,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// NewSession creates a session in the loading state.
func NewSession(courseID, itemID int64) *Session {
	now := time.Now()
	return &Session{
		id:        uuid.New().String(),
		courseID:  courseID,
		itemID:    itemID,
		state:     StateLoading,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CourseID returns the course this session belongs to.
func (s *Session) CourseID() int64 { return s.courseID }

// ItemID returns the course item this session was opened for.
func (s *Session) ItemID() int64 { return s.itemID }

// MarkLoaded transitions Loading → Ready and seeds the code buffer from the
// exercise's starter code.
func (s *Session) MarkLoaded(item *domain.CourseItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.item = item
	s.exercise = item.Exercise
	s.code = item.Exercise.StarterCode
	s.state = StateReady
	s.updatedAt = time.Now()
}

// MarkLoadFailed transitions Loading → LoadFailed. The state is terminal.
func (s *Session) MarkLoadFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLoadFailed
	s.updatedAt = time.Now()
}

// EnablePreview attaches a live preview to the session.
func (s *Session) EnablePreview(r *preview.Refresher, doc *preview.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresher = r
	s.previewDoc = doc
}

// Exercise returns the loaded exercise, or nil before load completes.
func (s *Session) Exercise() *domain.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise
}

// SetCode replaces the code buffer. No validation is applied.
func (s *Session) SetCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading || s.state == StateLoadFailed {
		return ErrNotReady
	}

	s.code = code
	s.updatedAt = time.Now()

	if s.refresher != nil {
		s.refresher.CodeChanged(s.exercise.Language.Normalize(), code)
	}
	return nil
}

// Code returns the current buffer contents.
func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// RefreshPreview forces an immediate preview regeneration.
func (s *Session) RefreshPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refresher != nil {
		s.refresher.Refresh(s.exercise.Language.Normalize(), s.code)
	}
}

// PreviewDocument returns the current synthesized preview document.
func (s *Session) PreviewDocument() (string, bool) {
	s.mu.Lock()
	doc := s.previewDoc
	s.mu.Unlock()

	if doc == nil {
		return "", false
	}
	return doc.Get(), true
}

// BeginRun transitions to Running and issues a new run sequence number. A
// second Run before the first resolves supersedes it.
func (s *Session) BeginRun() (uint64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading || s.state == StateLoadFailed {
		return 0, "", ErrNotReady
	}

	s.runSeq++
	s.state = StateRunning
	s.updatedAt = time.Now()
	return s.runSeq, s.code, nil
}

// FinishRun applies a run result. Stale results (a newer run was issued) are
// discarded and false is returned.
func (s *Session) FinishRun(seq uint64, result *domain.ExecutionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.runSeq {
		return false
	}

	s.lastRun = result
	s.state = StateReady
	s.updatedAt = time.Now()
	return true
}

// AbortRun restores Ready after a run that produced no result, unless a newer
// run is in flight.
func (s *Session) AbortRun(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq == s.runSeq {
		s.state = StateReady
		s.updatedAt = time.Now()
	}
}

// BeginSubmit transitions to Submitting and issues a new submit sequence
// number.
func (s *Session) BeginSubmit() (uint64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading || s.state == StateLoadFailed {
		return 0, "", ErrNotReady
	}

	s.submitSeq++
	s.state = StateSubmitting
	s.updatedAt = time.Now()
	return s.submitSeq, s.code, nil
}

// FinishSubmit applies a submission result, discarding stale responses.
func (s *Session) FinishSubmit(seq uint64, result *domain.SubmissionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.submitSeq {
		return false
	}

	s.lastSubmission = result
	s.state = StateReady
	s.updatedAt = time.Now()
	return true
}

// AbortSubmit restores Ready after a submit that produced no result, unless a
// newer submit is in flight.
func (s *Session) AbortSubmit(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq == s.submitSeq {
		s.state = StateReady
		s.updatedAt = time.Now()
	}
}

// RaiseCompletion raises the completion prompt with the next course item
// (nil when the course is finished).
func (s *Session) RaiseCompletion(next *domain.CourseItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completionPending = true
	s.nextItem = next
	s.updatedAt = time.Now()
}

// DismissCompletion clears the completion prompt.
func (s *Session) DismissCompletion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completionPending = false
	s.updatedAt = time.Now()
}

// BeginSolution transitions Ready → ViewingSolution.
func (s *Session) BeginSolution() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading || s.state == StateLoadFailed {
		return ErrNotReady
	}

	s.state = StateViewingSolution
	s.updatedAt = time.Now()
	return nil
}

// ShowSolution stores the fetched solution text.
func (s *Session) ShowSolution(solution string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.solution = solution
	s.updatedAt = time.Now()
}

// CloseSolution returns to Ready from the solution view.
func (s *Session) CloseSolution() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateViewingSolution {
		s.state = StateReady
		s.updatedAt = time.Now()
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close releases the preview debouncer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refresher != nil {
		s.refresher.Close()
	}
}

// Snapshot captures the session for serialization.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:                s.id,
		CourseID:          s.courseID,
		ItemID:            s.itemID,
		State:             s.state,
		Exercise:          s.exercise,
		Code:              s.code,
		LastRun:           s.lastRun,
		LastSubmission:    s.lastSubmission,
		Solution:          s.solution,
		CompletionPending: s.completionPending,
		NextItem:          s.nextItem,
		CreatedAt:         s.createdAt,
		UpdatedAt:         s.updatedAt,
	}
}
