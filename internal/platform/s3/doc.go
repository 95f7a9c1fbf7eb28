// Package s3 is a small object store over an S3-compatible endpoint, used
// to persist galley sessions in OCI Object Storage through its Amazon S3
// Compatibility API.
//
// The client is bound to one bucket. Missing objects are reported with
// [ErrNotFound] so callers can map them onto their own not-found errors.
package s3
