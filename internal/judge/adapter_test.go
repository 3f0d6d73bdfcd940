package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// mockRemote implements RemoteClient for testing
type mockRemote struct {
	result *domain.ExecutionResult
	err    error
	calls  int
}

func (m *mockRemote) Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestAdapter_Execute_Success(t *testing.T) {
	remote := &mockRemote{result: &domain.ExecutionResult{
		Success: true,
		Stdout:  "hi\n",
		Time:    "0.02",
		Memory:  3100,
	}}
	adapter := NewAdapter(remote, nil)

	result, err := adapter.Execute(context.Background(), 7, "print('hi')", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !result.Success {
		t.Error("result should be successful")
	}
	if result.Stdout != "hi\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls)
	}
}

func TestAdapter_Execute_TransportFailure(t *testing.T) {
	remote := &mockRemote{err: errors.New("connection refused")}
	adapter := NewAdapter(remote, nil)

	result, err := adapter.Execute(context.Background(), 7, "code", "")
	if err != nil {
		t.Fatalf("transport failure must produce a result, not an error: %v", err)
	}

	if result.Success {
		t.Error("transport failure must not be a success")
	}
	if !strings.Contains(result.Message, "execution server") {
		t.Errorf("message should name the execution server, got %q", result.Message)
	}
	if result.Stderr != "" {
		t.Error("transport failure must not fabricate program stderr")
	}
}

func TestAdapter_Execute_CompileFailureClearsTiming(t *testing.T) {
	remote := &mockRemote{result: &domain.ExecutionResult{
		Success:       false,
		CompileOutput: "main.cpp:1: error",
		Time:          "0.00",
		Memory:        128,
	}}
	adapter := NewAdapter(remote, nil)

	result, err := adapter.Execute(context.Background(), 7, "int main(", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Time != "" || result.Memory != 0 {
		t.Errorf("compile failure must not report time/memory, got %q/%d", result.Time, result.Memory)
	}
	if result.Ran() {
		t.Error("compile failure should not count as ran")
	}
}

func TestAdapter_RuntimeReady(t *testing.T) {
	tests := []struct {
		name    string
		runtime LocalRuntime
		want    bool
	}{
		{"nil runtime", nil, false},
		{"never ready", StaticRuntime(false), false},
		{"immediately ready", StaticRuntime(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewAdapter(&mockRemote{}, tt.runtime)
			if got := adapter.RuntimeReady(); got != tt.want {
				t.Errorf("RuntimeReady() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResilientExecutor_PassesThrough(t *testing.T) {
	remote := &mockRemote{result: &domain.ExecutionResult{Success: true, Stdout: "ok"}}
	adapter := NewAdapter(remote, nil)
	resilient := NewResilientExecutor(adapter, DefaultResilientConfig())
	defer resilient.Close()

	result, err := resilient.Execute(context.Background(), 7, "code", "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success {
		t.Error("result should pass through the wrapper unchanged")
	}
	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want exactly 1 (no retries)", remote.calls)
	}
}

func TestResilientExecutor_NoRetryOnFailure(t *testing.T) {
	remote := &mockRemote{err: errors.New("down")}
	adapter := NewAdapter(remote, nil)
	resilient := NewResilientExecutor(adapter, ResilientConfig{EnableBulkhead: true})
	defer resilient.Close()

	// The adapter converts the transport error into a failed result,
	// so the wrapper sees success at its level; either way the remote
	// must be hit exactly once.
	_, _ = resilient.Execute(context.Background(), 7, "code", "")
	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want exactly 1", remote.calls)
	}
}
