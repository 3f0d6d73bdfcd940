package session

import (
	"context"
)

// SessionService defines the interface for session operations used by the
// daemon handlers.
type SessionService interface {
	// Create opens a session for a course item and loads the exercise
	Create(ctx context.Context, courseID, itemID int64) (*Session, error)

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session and its code buffer
	Delete(ctx context.Context, id string) error

	// List returns all session IDs
	List(ctx context.Context) []string

	// UpdateCode replaces the session's code buffer
	UpdateCode(ctx context.Context, id, code string) error

	// Run executes the current buffer
	Run(ctx context.Context, id string) (*RunOutcome, error)

	// Submit grades the current buffer
	Submit(ctx context.Context, id string) (*SubmitOutcome, error)

	// ViewSolution fetches the reference solution
	ViewSolution(ctx context.Context, id string) (string, error)

	// CloseSolution leaves the solution view
	CloseSolution(ctx context.Context, id string) error

	// DismissCompletion clears the completion prompt
	DismissCompletion(ctx context.Context, id string) error
}

// Ensure Service implements SessionService
var _ SessionService = (*Service)(nil)
