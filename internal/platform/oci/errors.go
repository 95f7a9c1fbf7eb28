package oci

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a non-2xx Resource Manager response.
type ServiceError struct {
	StatusCode   int    `json:"-"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	OpcRequestID string `json:"-"`
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("resource manager returned %d", e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.OpcRequestID != "" {
		msg += " (opc-request-id " + e.OpcRequestID + ")"
	}
	return msg
}

func statusOf(err error) (int, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode, true
	}
	return 0, false
}

// IsNotFound checks if an error indicates a missing stack or job.
func IsNotFound(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusNotFound
}

// IsConflict checks if an error indicates the resource is busy, such as
// a stack with a job already running.
func IsConflict(err error) bool {
	status, ok := statusOf(err)
	return ok && status == http.StatusConflict
}

// IsRetryable reports whether a failed call may succeed on retry:
// throttling, server errors and transport failures. Other service errors
// are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	status, ok := statusOf(err)
	if !ok {
		return !errors.Is(err, errAuth)
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// errAuth marks failures to build a request signer.
var errAuth = errors.New("oci authentication is not configured")
