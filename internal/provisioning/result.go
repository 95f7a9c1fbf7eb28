package provisioning

import (
	"fmt"
	"strings"
	"time"

	"github.com/sogawa-yk/Galley/internal/platform/oci"
)

// Operation is a Terraform action.
type Operation string

// Operations.
const (
	OperationPlan    Operation = "plan"
	OperationApply   Operation = "apply"
	OperationDestroy Operation = "destroy"
)

// ParseOperation accepts an operation name in any case.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(s)); op {
	case OperationPlan, OperationApply, OperationDestroy:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// JobOperation maps to the Resource Manager operation.
func (o Operation) JobOperation() oci.JobOperation {
	return oci.JobOperation(strings.ToUpper(string(o)))
}

// Status is the outcome of one call.
type Status string

// Statuses. The first three mirror terminal job states.
const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
	StatusTimedOut  Status = "TIMED_OUT"
	StatusError     Status = "ERROR"
)

// Result is the structured outcome of a plan, apply or destroy call.
type Result struct {
	Success    bool             `json:"success"`
	Operation  Operation        `json:"command"`
	Status     Status           `json:"status"`
	SessionID  string           `json:"session_id"`
	StackID    string           `json:"stack_id,omitempty"`
	JobID      string           `json:"job_id,omitempty"`
	Summary    string           `json:"summary,omitempty"`
	Errors     []TerraformError `json:"errors,omitempty"`
	Logs       string           `json:"stdout"`
	Message    string           `json:"stderr,omitempty"`
	ExitCode   int              `json:"exit_code"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Duration is the wall-clock time the call took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// JobStatus is a point-in-time view of one job.
type JobStatus struct {
	JobID     string           `json:"job_id"`
	StackID   string           `json:"stack_id,omitempty"`
	Operation string           `json:"operation"`
	State     oci.JobState     `json:"state"`
	Terminal  bool             `json:"terminal"`
	Summary   string           `json:"summary,omitempty"`
	Errors    []TerraformError `json:"errors,omitempty"`
	Failure   string           `json:"failure,omitempty"`
	Logs      string           `json:"logs"`
}
