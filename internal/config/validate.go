package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors that would only surface
// later as confusing remote failures.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.Session.Backend {
	case BackendFile:
	case BackendS3:
		if err := c.Session.S3.validate(); err != nil {
			return fmt.Errorf("session storage validation failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown session backend %q (want %s or %s)", c.Session.Backend, BackendFile, BackendS3)
	}

	if c.WorkCompartmentID != "" && !strings.HasPrefix(c.WorkCompartmentID, "ocid1.") {
		return fmt.Errorf("work_compartment_id %q is not an OCID", c.WorkCompartmentID)
	}
	return nil
}

func (s S3Config) validate() error {
	var missing []string
	if s.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if s.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if s.AccessKey == "" {
		missing = append(missing, "access_key")
	}
	if s.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("s3 backend requires %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireProvisioning reports what is missing before a Resource Manager
// call can be made.
func (c *Config) RequireProvisioning() error {
	if c.Region == "" {
		return fmt.Errorf("region is not configured (set GALLEY_REGION)")
	}
	if c.WorkCompartmentID == "" {
		return fmt.Errorf("work compartment is not configured (set GALLEY_WORK_COMPARTMENT_ID)")
	}
	return nil
}
