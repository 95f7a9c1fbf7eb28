package provisioning

import (
	"fmt"
	"time"
)

// Phase defines the interface for one provisioning step.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the logic of this phase.
	Provision(ctx *Context) error
}

// DefaultPhases is the pipeline of one call. Destroy reuses the stack
// update so the job runs against the current bundle.
func DefaultPhases() []Phase {
	return []Phase{
		packagePhase{},
		stackPhase{},
		jobPhase{},
		pollPhase{},
		logPhase{},
	}
}

// RunPhases executes phases sequentially, stopping at the first failure.
func RunPhases(ctx *Context, phases []Phase) error {
	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		LogPhaseStart(ctx.Observer, name)
		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}
		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}
	return nil
}
