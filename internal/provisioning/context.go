package provisioning

import (
	"context"

	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/platform/oci"
	"github.com/sogawa-yk/Galley/internal/session"
)

// Request is one plan, apply or destroy call.
type Request struct {
	SessionID string
	Operation Operation
	// TerraformDir overrides the session's synthesis directory. It must be
	// absolute.
	TerraformDir string
	// Variables are passed to the stack. They win over the values filled
	// in automatically.
	Variables map[string]string
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Populated by the package phase
	Archive []byte

	// Populated by the stack phase
	StackID      string
	StackCreated bool
	Variables    map[string]string

	// Populated by the job and poll phases
	Job      *oci.Job
	TimedOut bool

	// Populated by the log phase
	Logs          string
	LogsAvailable bool
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Request      Request
	TerraformDir string
	Session      *session.Session
	Store        session.Store
	Config       *config.Config
	Timeouts     *config.Timeouts
	RM           oci.Manager
	Observer     Observer
	State        *State
}
