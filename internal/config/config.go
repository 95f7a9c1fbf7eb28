package config

// Session storage backends.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Defaults applied by Load.
const (
	DefaultDataDir          = ".galley"
	DefaultTerraformVersion = "1.5.x"
	DefaultFile             = "galley.yaml"
)

// Config is the CLI configuration.
type Config struct {
	// DataDir holds sessions and synthesized bundles for the file backend.
	// Bundles are always written below it.
	DataDir string `yaml:"data_dir"`

	// ConfigDir optionally overrides the built-in validation rules with
	// the YAML files in its validation-rules/ subdirectory.
	ConfigDir string `yaml:"config_dir"`

	Region            string `yaml:"region"`
	WorkCompartmentID string `yaml:"work_compartment_id"`
	TerraformVersion  string `yaml:"terraform_version"`

	// ResourcePrincipal selects resource principal auth for the Resource
	// Manager client and the oci CLI. Set from OCI_RESOURCE_PRINCIPAL_VERSION.
	ResourcePrincipal bool `yaml:"-"`

	// OCIConfigFile and OCIProfile select the API key used for request
	// signing when resource principal auth is off.
	OCIConfigFile string `yaml:"oci_config_file"`
	OCIProfile    string `yaml:"oci_profile"`

	Session SessionConfig `yaml:"session"`
}

// SessionConfig selects where sessions are persisted.
type SessionConfig struct {
	Backend string   `yaml:"backend"`
	S3      S3Config `yaml:"s3"`
}

// S3Config addresses an S3-compatible bucket, such as the OCI Object
// Storage compatibility endpoint.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.TerraformVersion == "" {
		c.TerraformVersion = DefaultTerraformVersion
	}
	if c.Session.Backend == "" {
		c.Session.Backend = BackendFile
	}
	if c.Session.S3.Prefix == "" {
		c.Session.S3.Prefix = "sessions/"
	}
}
