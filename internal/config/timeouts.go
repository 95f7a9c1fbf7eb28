package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
type Timeouts struct {
	JobPoll           time.Duration // Interval between job state polls
	Plan              time.Duration // Deadline for a plan job
	Apply             time.Duration // Deadline for an apply or destroy job
	CLI               time.Duration // Deadline for one oci CLI invocation
	RetryMaxAttempts  int           // Attempts for retryable Resource Manager calls
	RetryInitialDelay time.Duration // First backoff delay
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - GALLEY_JOB_POLL_INTERVAL (default: 5s)
//   - GALLEY_TIMEOUT_PLAN (default: 5m)
//   - GALLEY_TIMEOUT_APPLY (default: 30m, also used for destroy)
//   - GALLEY_TIMEOUT_CLI (default: 120s)
//   - GALLEY_RETRY_MAX_ATTEMPTS (default: 3)
//   - GALLEY_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	d := DefaultTimeouts()
	return &Timeouts{
		JobPoll:           parseDuration("GALLEY_JOB_POLL_INTERVAL", d.JobPoll),
		Plan:              parseDuration("GALLEY_TIMEOUT_PLAN", d.Plan),
		Apply:             parseDuration("GALLEY_TIMEOUT_APPLY", d.Apply),
		CLI:               parseDuration("GALLEY_TIMEOUT_CLI", d.CLI),
		RetryMaxAttempts:  parseInt("GALLEY_RETRY_MAX_ATTEMPTS", d.RetryMaxAttempts),
		RetryInitialDelay: parseDuration("GALLEY_RETRY_INITIAL_DELAY", d.RetryInitialDelay),
	}
}

// DefaultTimeouts returns the built-in values without reading the
// environment.
func DefaultTimeouts() *Timeouts {
	return &Timeouts{
		JobPoll:           5 * time.Second,
		Plan:              5 * time.Minute,
		Apply:             30 * time.Minute,
		CLI:               120 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 1 * time.Second,
	}
}

// parseDuration parses a positive duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}

	return i
}
