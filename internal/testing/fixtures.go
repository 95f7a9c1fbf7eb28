package testing

import (
	"context"

	"github.com/sogawa-yk/Galley/internal/platform/oci"
)

// ResourceManagerFixture provides a pre-configured mock Resource Manager
// for common job outcomes.
type ResourceManagerFixture struct {
	mock *oci.MockClient
}

// NewResourceManagerFixture creates a new fixture around an empty mock.
func NewResourceManagerFixture() *ResourceManagerFixture {
	return &ResourceManagerFixture{mock: &oci.MockClient{}}
}

// Mock returns the underlying MockClient for custom configuration.
func (f *ResourceManagerFixture) Mock() *oci.MockClient {
	return f.mock
}

// SucceedingPlan makes every job succeed with a plan log carrying summary.
// Returns the same mock for chaining.
func (f *ResourceManagerFixture) SucceedingPlan(summary string) *oci.MockClient {
	f.mock.GetJobFunc = func(_ context.Context, jobID string) (*oci.Job, error) {
		return &oci.Job{ID: jobID, LifecycleState: oci.JobSucceeded}, nil
	}
	f.mock.GetJobLogsFunc = func(context.Context, string) (string, error) {
		return "Terraform will perform the following actions:\n\nPlan: " + summary + ".\n", nil
	}
	return f.mock
}

// FailingJob makes every job fail with the given Terraform log output.
func (f *ResourceManagerFixture) FailingJob(logs string) *oci.MockClient {
	f.mock.GetJobFunc = func(_ context.Context, jobID string) (*oci.Job, error) {
		return &oci.Job{
			ID:             jobID,
			LifecycleState: oci.JobFailed,
			FailureDetails: &oci.FailureDetails{Code: "TERRAFORM_EXECUTION_ERROR", Message: "terraform failed"},
		}, nil
	}
	f.mock.GetJobLogsFunc = func(context.Context, string) (string, error) {
		return logs, nil
	}
	return f.mock
}

// StuckJob keeps every job in progress so callers hit their timeout.
func (f *ResourceManagerFixture) StuckJob() *oci.MockClient {
	f.mock.GetJobFunc = func(_ context.Context, jobID string) (*oci.Job, error) {
		return &oci.Job{ID: jobID, LifecycleState: oci.JobInProgress}, nil
	}
	return f.mock
}

// WithRemoteError makes stack creation fail with err.
func (f *ResourceManagerFixture) WithRemoteError(err error) *oci.MockClient {
	f.mock.CreateStackFunc = func(context.Context, oci.CreateStackInput) (*oci.Stack, error) {
		return nil, err
	}
	return f.mock
}
