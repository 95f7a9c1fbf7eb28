// Package config holds the runtime settings of the galley CLI: where
// session state lives, which OCI region and compartment provisioning
// targets, and the timeouts of remote operations.
//
// Settings come from an optional YAML file overlaid with GALLEY_*
// environment variables. Timeouts are read separately by [LoadTimeouts]
// so that tests and long-running callers can tune them without a file.
package config
