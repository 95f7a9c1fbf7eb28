package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path, applies GALLEY_* environment
// overrides, fills defaults and validates the result. An empty path reads
// galley.yaml from the working directory when it exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	// #nosec G304
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DataDir, "GALLEY_DATA_DIR")
	setString(&cfg.ConfigDir, "GALLEY_CONFIG_DIR")
	setString(&cfg.Region, "GALLEY_REGION")
	setString(&cfg.WorkCompartmentID, "GALLEY_WORK_COMPARTMENT_ID")
	setString(&cfg.TerraformVersion, "GALLEY_TERRAFORM_VERSION")
	setString(&cfg.OCIConfigFile, "OCI_CLI_CONFIG_FILE")
	setString(&cfg.OCIProfile, "OCI_CLI_PROFILE")
	setString(&cfg.Session.Backend, "GALLEY_SESSION_BACKEND")
	setString(&cfg.Session.S3.Endpoint, "GALLEY_S3_ENDPOINT")
	setString(&cfg.Session.S3.Region, "GALLEY_S3_REGION")
	setString(&cfg.Session.S3.Bucket, "GALLEY_S3_BUCKET")
	setString(&cfg.Session.S3.Prefix, "GALLEY_S3_PREFIX")
	setString(&cfg.Session.S3.AccessKey, "GALLEY_S3_ACCESS_KEY")
	setString(&cfg.Session.S3.SecretKey, "GALLEY_S3_SECRET_KEY")

	cfg.ResourcePrincipal = os.Getenv(ResourcePrincipalEnv) != ""
	if cfg.Region == "" {
		cfg.Region = os.Getenv("OCI_REGION")
	}
}

// ResourcePrincipalEnv is set by OCI in environments that run with a
// resource principal.
const ResourcePrincipalEnv = "OCI_RESOURCE_PRINCIPAL_VERSION"

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}
