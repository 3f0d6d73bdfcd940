package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/academy/internal/domain"
	"github.com/felixgeelhaar/academy/internal/events"
	"github.com/felixgeelhaar/academy/internal/judge"
	"github.com/felixgeelhaar/academy/internal/preview"
)

// Backend is the slice of the Academy API client the service needs.
type Backend interface {
	GetCourseItem(ctx context.Context, itemID int64) (*domain.CourseItem, error)
	Submit(ctx context.Context, exerciseID int64, code string) (*domain.SubmissionResult, error)
	GetSolution(ctx context.Context, exerciseID int64) (string, error)
}

// Progression marks course items complete and returns the follow-up item.
type Progression interface {
	CompleteItem(ctx context.Context, courseID, itemID int64) (*domain.CourseItem, error)
}

// Recorder journals attempt outcomes. Optional.
type Recorder interface {
	RecordRun(exerciseID int64, result *domain.ExecutionResult, elapsed time.Duration) error
	RecordSubmission(exerciseID int64, result *domain.SubmissionResult, elapsed time.Duration) error
}

// RunOutcome is the result of a Run operation.
type RunOutcome struct {
	// Superseded is true when a newer Run was issued before this one
	// resolved; its result was discarded.
	Superseded bool                    `json:"superseded"`
	Preview    bool                    `json:"preview"`
	Result     *domain.ExecutionResult `json:"result,omitempty"`
	Output     string                  `json:"output"`
}

// SubmitOutcome is the result of a Submit operation.
type SubmitOutcome struct {
	Superseded        bool                     `json:"superseded"`
	Result            *domain.SubmissionResult `json:"result,omitempty"`
	CompletionPending bool                     `json:"completion_pending"`
	NextItem          *domain.CourseItem       `json:"next_item,omitempty"`
}

// Service orchestrates exercise sessions: loading items from the backend,
// dispatching runs to the judge or the preview renderer, and driving course
// progression on successful submissions.
type Service struct {
	store       *Store
	backend     Backend
	executor    judge.Executor
	progression Progression

	recorder  Recorder          // Optional: journals attempt outcomes
	publisher *events.Publisher // Optional: emits session events

	previewDelay time.Duration
}

// NewService creates a new session service.
func NewService(store *Store, backend Backend, executor judge.Executor, progression Progression) *Service {
	return &Service{
		store:        store,
		backend:      backend,
		executor:     executor,
		progression:  progression,
		previewDelay: preview.DefaultDebounce,
	}
}

// SetRecorder sets the attempt journal.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetPublisher sets the event publisher.
func (s *Service) SetPublisher(p *events.Publisher) {
	s.publisher = p
}

// SetPreviewDelay overrides the preview debounce interval. Intended for
// configuration and tests.
func (s *Service) SetPreviewDelay(d time.Duration) {
	s.previewDelay = d
}

// Create opens a session for a course item and loads the exercise. A load
// failure leaves the session in the terminal LoadFailed state rather than
// returning an error, so clients can render the failure.
func (s *Service) Create(ctx context.Context, courseID, itemID int64) (*Session, error) {
	sess := NewSession(courseID, itemID)
	s.store.Save(sess)

	item, err := s.backend.GetCourseItem(ctx, itemID)
	if err != nil {
		slog.Warn("failed to load course item", "item_id", itemID, "error", err)
		sess.MarkLoadFailed()
		return sess, nil
	}
	if item.Exercise == nil {
		slog.Warn("cannot open session", "item_id", itemID, "content_type", item.ContentType)
		s.store.Delete(sess.ID())
		return nil, fmt.Errorf("open item %d: %w", itemID, ErrNoExercise)
	}

	sess.MarkLoaded(item)

	// Web languages get an eager live preview.
	if item.Exercise.Language.Normalize().IsWeb() {
		doc := &preview.Document{}
		r := preview.NewRefresher(doc, s.previewDelay)
		sess.EnablePreview(r, doc)
		sess.RefreshPreview()
	}

	slog.Info("session created",
		"session_id", sess.ID(),
		"course_id", courseID,
		"item_id", itemID,
		"language", item.Exercise.Language,
	)
	return sess, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(id)
}

// Delete removes a session, discarding its code buffer.
func (s *Service) Delete(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	sess.Close()
	return s.store.Delete(id)
}

// List returns all session IDs.
func (s *Service) List(ctx context.Context) []string {
	return s.store.List()
}

// UpdateCode replaces a session's code buffer. Preview regeneration is
// debounced behind the session's refresher.
func (s *Service) UpdateCode(ctx context.Context, id, code string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	return sess.SetCode(code)
}

// Run executes the session's current buffer. Web languages route to the
// preview renderer and never touch the judge; everything else goes to the
// judge with empty stdin.
func (s *Service) Run(ctx context.Context, id string) (*RunOutcome, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	ex := sess.Exercise()
	if ex == nil {
		return nil, ErrNotReady
	}

	if ex.Language.Normalize().IsWeb() {
		sess.RefreshPreview()
		return &RunOutcome{Preview: true, Output: "Preview refreshed."}, nil
	}

	seq, code, err := sess.BeginRun()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.executor.Execute(ctx, ex.ID, code, "")
	if err != nil {
		sess.AbortRun(seq)
		return nil, fmt.Errorf("execute: %w", err)
	}

	if !sess.FinishRun(seq, result) {
		slog.Debug("run superseded", "session_id", id, "seq", seq)
		return &RunOutcome{Superseded: true}, nil
	}

	s.recordRun(ex.ID, result, time.Since(start))
	s.publisher.RunCompleted(ctx, id, ex.ID, result.Success)

	return &RunOutcome{Result: result, Output: FormatRunOutput(result)}, nil
}

// Submit sends the buffer to the grading endpoint and, on a fresh success,
// marks the course item complete and raises the completion prompt.
func (s *Service) Submit(ctx context.Context, id string) (*SubmitOutcome, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	ex := sess.Exercise()
	if ex == nil {
		return nil, ErrNotReady
	}

	seq, code, err := sess.BeginSubmit()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.backend.Submit(ctx, ex.ID, code)
	if err != nil {
		// A transport failure is a submission error, never a wrong answer.
		slog.Warn("submission failed", "session_id", id, "exercise_id", ex.ID, "error", err)
		result = &domain.SubmissionResult{
			Success: false,
			Message: fmt.Sprintf("Could not submit your answer: %v. Check your connection and try again.", err),
		}
	}

	if !sess.FinishSubmit(seq, result) {
		slog.Debug("submission superseded", "session_id", id, "seq", seq)
		return &SubmitOutcome{Superseded: true}, nil
	}

	s.recordSubmission(ex.ID, result, time.Since(start))
	s.publisher.SubmissionReceived(ctx, id, ex.ID, result.Success)

	outcome := &SubmitOutcome{Result: result}

	// A correct answer on an already-completed exercise shows feedback
	// only: no progression call, no prompt. Contradictory backend flags
	// (already completed + current answer incorrect) get the same
	// treatment.
	if !result.ShouldAdvance() {
		return outcome, nil
	}

	next, err := s.progression.CompleteItem(ctx, sess.CourseID(), sess.ItemID())
	if err != nil {
		slog.Warn("failed to record completion",
			"session_id", id,
			"course_id", sess.CourseID(),
			"item_id", sess.ItemID(),
			"error", err,
		)
		return outcome, nil
	}

	sess.RaiseCompletion(next)
	s.publisher.ItemCompleted(ctx, id, sess.CourseID(), sess.ItemID())

	outcome.CompletionPending = true
	outcome.NextItem = next
	return outcome, nil
}

// ViewSolution fetches the reference solution and enters the solution view.
func (s *Service) ViewSolution(ctx context.Context, id string) (string, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return "", err
	}

	ex := sess.Exercise()
	if ex == nil {
		return "", ErrNotReady
	}

	if err := sess.BeginSolution(); err != nil {
		return "", err
	}

	solution, err := s.backend.GetSolution(ctx, ex.ID)
	if err != nil {
		sess.CloseSolution()
		return "", fmt.Errorf("fetch solution: %w", err)
	}

	sess.ShowSolution(solution)
	return solution, nil
}

// CloseSolution leaves the solution view.
func (s *Service) CloseSolution(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	sess.CloseSolution()
	return nil
}

// DismissCompletion clears a session's completion prompt.
func (s *Service) DismissCompletion(ctx context.Context, id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	sess.DismissCompletion()
	return nil
}

func (s *Service) recordRun(exerciseID int64, result *domain.ExecutionResult, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(exerciseID, result, elapsed); err != nil {
		slog.Warn("failed to journal run", "exercise_id", exerciseID, "error", err)
	}
}

func (s *Service) recordSubmission(exerciseID int64, result *domain.SubmissionResult, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSubmission(exerciseID, result, elapsed); err != nil {
		slog.Warn("failed to journal submission", "exercise_id", exerciseID, "error", err)
	}
}
