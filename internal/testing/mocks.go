package testing

import (
	"context"
	"slices"
	"sync"

	"github.com/sogawa-yk/Galley/internal/ocicli"
)

// RecordingRunner is an ocicli.Runner that records invocations and returns
// a canned result instead of spawning a process.
type RecordingRunner struct {
	mu    sync.Mutex
	calls [][]string

	Output ocicli.Output
	Err    error
}

// NewRecordingRunner returns a runner that reports a successful run
// printing stdout.
func NewRecordingRunner(stdout string) *RecordingRunner {
	return &RecordingRunner{Output: ocicli.Output{Stdout: stdout}}
}

// Run records the invocation.
func (r *RecordingRunner) Run(_ context.Context, name string, args []string) (ocicli.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.Output, r.Err
}

// Calls returns every recorded argv, binary name first.
func (r *RecordingRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}
