package oci

import (
	"context"
)

// MockClient is a mock implementation of Manager. Unset functions return
// canned values.
type MockClient struct {
	CreateStackFunc func(ctx context.Context, in CreateStackInput) (*Stack, error)
	UpdateStackFunc func(ctx context.Context, stackID string, in UpdateStackInput) (*Stack, error)
	GetStackFunc    func(ctx context.Context, stackID string) (*Stack, error)
	CreateJobFunc   func(ctx context.Context, in CreateJobInput) (*Job, error)
	GetJobFunc      func(ctx context.Context, jobID string) (*Job, error)
	GetJobLogsFunc  func(ctx context.Context, jobID string) (string, error)
	IdentityFunc    func(ctx context.Context) (Identity, error)
}

var _ Manager = (*MockClient)(nil)

// CreateStack mocks stack creation.
func (m *MockClient) CreateStack(ctx context.Context, in CreateStackInput) (*Stack, error) {
	if m.CreateStackFunc != nil {
		return m.CreateStackFunc(ctx, in)
	}
	return &Stack{ID: "ocid1.ormstack.oc1..mock", DisplayName: in.DisplayName, CompartmentID: in.CompartmentID, LifecycleState: "ACTIVE"}, nil
}

// UpdateStack mocks stack updates.
func (m *MockClient) UpdateStack(ctx context.Context, stackID string, in UpdateStackInput) (*Stack, error) {
	if m.UpdateStackFunc != nil {
		return m.UpdateStackFunc(ctx, stackID, in)
	}
	return &Stack{ID: stackID, LifecycleState: "ACTIVE"}, nil
}

// GetStack mocks stack lookup.
func (m *MockClient) GetStack(ctx context.Context, stackID string) (*Stack, error) {
	if m.GetStackFunc != nil {
		return m.GetStackFunc(ctx, stackID)
	}
	return &Stack{ID: stackID, LifecycleState: "ACTIVE"}, nil
}

// CreateJob mocks job creation.
func (m *MockClient) CreateJob(ctx context.Context, in CreateJobInput) (*Job, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, in)
	}
	return &Job{ID: "ocid1.ormjob.oc1..mock", StackID: in.StackID, Operation: in.JobOperationDetails.Operation, LifecycleState: JobAccepted}, nil
}

// GetJob mocks job lookup. The default job has succeeded.
func (m *MockClient) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if m.GetJobFunc != nil {
		return m.GetJobFunc(ctx, jobID)
	}
	return &Job{ID: jobID, LifecycleState: JobSucceeded}, nil
}

// GetJobLogs mocks log retrieval.
func (m *MockClient) GetJobLogs(ctx context.Context, jobID string) (string, error) {
	if m.GetJobLogsFunc != nil {
		return m.GetJobLogsFunc(ctx, jobID)
	}
	return "", nil
}

// Identity mocks identity lookup.
func (m *MockClient) Identity(ctx context.Context) (Identity, error) {
	if m.IdentityFunc != nil {
		return m.IdentityFunc(ctx)
	}
	return Identity{TenancyID: "ocid1.tenancy.oc1..mock", Region: "ap-osaka-1"}, nil
}
