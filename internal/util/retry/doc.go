// Package retry retries transient failures with exponential backoff.
//
// [WithExponentialBackoff] drives the loop. Callers mark permanent errors
// with [Fatal], or classify them up front with [WithRetryIf]; the Resource
// Manager client uses the latter to retry throttling and 5xx responses
// only.
package retry
