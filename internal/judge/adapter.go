// Package judge adapts the remote judge service behind a single
// Execute operation. Transport failures and program failures are kept
// apart: a judge that cannot be reached is reported as a connectivity
// problem, never as the submitted program failing.
package judge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// Executor converts an (exercise id, source code, stdin) triple into an
// ExecutionResult. Implementations must treat this as a network
// operation that may take multiple seconds.
type Executor interface {
	Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error)
}

// RemoteClient is the slice of the backend client the adapter needs.
type RemoteClient interface {
	Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error)
}

// Adapter dispatches runs to the remote judge. The optional local
// runtime is a readiness signal only: it is probed and warmed in the
// background but execution always goes through the remote judge.
type Adapter struct {
	remote  RemoteClient
	runtime LocalRuntime
}

// NewAdapter creates a new judge adapter. runtime may be nil.
func NewAdapter(remote RemoteClient, runtime LocalRuntime) *Adapter {
	return &Adapter{remote: remote, runtime: runtime}
}

// Execute runs code on the remote judge. A transport failure comes back
// as a failed result with a connectivity message rather than an error;
// the error return is reserved for invalid use (nil client, bad args).
func (a *Adapter) Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error) {
	if a.remote == nil {
		return nil, fmt.Errorf("judge adapter has no remote client")
	}

	result, err := a.remote.Execute(ctx, exerciseID, code, stdin)
	if err != nil {
		slog.Warn("judge unreachable", "exercise_id", exerciseID, "error", err)
		return &domain.ExecutionResult{
			Success: false,
			Message: fmt.Sprintf("Could not reach the execution server: %v. Check your connection and try again.", err),
		}, nil
	}

	// A compile failure means the program never ran; the judge has no
	// business reporting timing or memory for it.
	if result.CompileOutput != "" {
		result.Time = ""
		result.Memory = 0
	}

	return result, nil
}

// RuntimeReady reports whether the speculative local runtime finished
// its warmup. Exposed for status reporting only; Run never consults it.
func (a *Adapter) RuntimeReady() bool {
	return a.runtime != nil && a.runtime.Ready()
}
