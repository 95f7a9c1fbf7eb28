package oci

import "time"

// APIVersion is the Resource Manager API date segment.
const APIVersion = "20180917"

// JobOperation is the Terraform action a job runs.
type JobOperation string

// Job operations.
const (
	OperationPlan    JobOperation = "PLAN"
	OperationApply   JobOperation = "APPLY"
	OperationDestroy JobOperation = "DESTROY"
)

// JobState is a job lifecycle state.
type JobState string

// Job lifecycle states.
const (
	JobAccepted   JobState = "ACCEPTED"
	JobInProgress JobState = "IN_PROGRESS"
	JobSucceeded  JobState = "SUCCEEDED"
	JobFailed     JobState = "FAILED"
	JobCanceling  JobState = "CANCELING"
	JobCanceled   JobState = "CANCELED"
)

// Terminal reports whether no further transitions will happen.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCanceled
}

// StackDeleted is the lifecycle state of a removed stack.
const StackDeleted = "DELETED"

// Stack is a Resource Manager stack.
type Stack struct {
	ID               string            `json:"id"`
	CompartmentID    string            `json:"compartmentId"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description,omitempty"`
	LifecycleState   string            `json:"lifecycleState"`
	TerraformVersion string            `json:"terraformVersion,omitempty"`
	Variables        map[string]string `json:"variables,omitempty"`
	TimeCreated      *time.Time        `json:"timeCreated,omitempty"`
}

// FailureDetails explains a failed job.
type FailureDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Job is a Resource Manager job.
type Job struct {
	ID             string          `json:"id"`
	StackID        string          `json:"stackId"`
	CompartmentID  string          `json:"compartmentId,omitempty"`
	DisplayName    string          `json:"displayName,omitempty"`
	Operation      JobOperation    `json:"operation"`
	LifecycleState JobState        `json:"lifecycleState"`
	TimeCreated    *time.Time      `json:"timeCreated,omitempty"`
	TimeFinished   *time.Time      `json:"timeFinished,omitempty"`
	FailureDetails *FailureDetails `json:"failureDetails,omitempty"`
}

// ConfigSource carries a zipped Terraform configuration.
type ConfigSource struct {
	ConfigSourceType     string `json:"configSourceType"`
	ZipFileBase64Encoded string `json:"zipFileBase64Encoded"`
}

// ZipUpload wraps a base64 encoded zip archive.
func ZipUpload(base64Zip string) ConfigSource {
	return ConfigSource{ConfigSourceType: "ZIP_UPLOAD", ZipFileBase64Encoded: base64Zip}
}

// CreateStackInput is the body of a create stack call.
type CreateStackInput struct {
	CompartmentID    string            `json:"compartmentId"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description,omitempty"`
	ConfigSource     ConfigSource      `json:"configSource"`
	Variables        map[string]string `json:"variables,omitempty"`
	TerraformVersion string            `json:"terraformVersion,omitempty"`
	FreeformTags     map[string]string `json:"freeformTags,omitempty"`
}

// UpdateStackInput is the body of an update stack call.
type UpdateStackInput struct {
	DisplayName      string            `json:"displayName,omitempty"`
	ConfigSource     ConfigSource      `json:"configSource"`
	Variables        map[string]string `json:"variables,omitempty"`
	TerraformVersion string            `json:"terraformVersion,omitempty"`
	FreeformTags     map[string]string `json:"freeformTags,omitempty"`
}

// JobOperationDetails selects the job operation.
type JobOperationDetails struct {
	Operation             JobOperation `json:"operation"`
	ExecutionPlanStrategy string       `json:"executionPlanStrategy,omitempty"`
}

// CreateJobInput is the body of a create job call.
type CreateJobInput struct {
	StackID             string              `json:"stackId"`
	DisplayName         string              `json:"displayName,omitempty"`
	JobOperationDetails JobOperationDetails `json:"jobOperationDetails"`
	FreeformTags        map[string]string   `json:"freeformTags,omitempty"`
}

// NewJobInput builds a job request. Apply and destroy are auto-approved.
func NewJobInput(stackID string, op JobOperation, displayName string) CreateJobInput {
	details := JobOperationDetails{Operation: op}
	if op == OperationApply || op == OperationDestroy {
		details.ExecutionPlanStrategy = "AUTO_APPROVED"
	}
	return CreateJobInput{StackID: stackID, DisplayName: displayName, JobOperationDetails: details}
}
