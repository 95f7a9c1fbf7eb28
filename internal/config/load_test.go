package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"GALLEY_DATA_DIR", "GALLEY_CONFIG_DIR", "GALLEY_REGION", "GALLEY_WORK_COMPARTMENT_ID",
	"GALLEY_TERRAFORM_VERSION", "OCI_CLI_CONFIG_FILE", "OCI_CLI_PROFILE", "OCI_REGION",
	"GALLEY_SESSION_BACKEND", "GALLEY_S3_ENDPOINT", "GALLEY_S3_REGION", "GALLEY_S3_BUCKET",
	"GALLEY_S3_PREFIX", "GALLEY_S3_ACCESS_KEY", "GALLEY_S3_SECRET_KEY", ResourcePrincipalEnv,
}

// clearEnv blanks every variable Load reads. Tests using it cannot run in
// parallel.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galley.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, "1.5.x", cfg.TerraformVersion)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data_dir: /var/lib/galley
region: us-ashburn-1
work_compartment_id: ocid1.compartment.oc1..file
session:
  backend: s3
  s3:
    endpoint: https://ns.compat.objectstorage.us-ashburn-1.oraclecloud.com
    bucket: galley
    access_key: ak
    secret_key: sk
`)
	t.Setenv("GALLEY_REGION", "ap-osaka-1")
	t.Setenv(ResourcePrincipalEnv, "2.2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/galley", cfg.DataDir)
	assert.Equal(t, "ap-osaka-1", cfg.Region, "environment wins over the file")
	assert.Equal(t, "ocid1.compartment.oc1..file", cfg.WorkCompartmentID)
	assert.True(t, cfg.ResourcePrincipal)
	assert.Equal(t, BackendS3, cfg.Session.Backend)
	assert.Equal(t, "galley", cfg.Session.S3.Bucket)
	assert.Equal(t, "sessions/", cfg.Session.S3.Prefix)
}

func TestLoadRegionFallsBackToOCIRegion(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCI_REGION", "eu-frankfurt-1")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "eu-frankfurt-1", cfg.Region)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "region: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s3 := func(mut func(*S3Config)) *Config {
		cfg := Default()
		cfg.Session.Backend = BackendS3
		cfg.Session.S3 = S3Config{Endpoint: "https://e", Bucket: "b", AccessKey: "a", SecretKey: "s"}
		if mut != nil {
			mut(&cfg.Session.S3)
		}
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "defaults", cfg: Default()},
		{name: "complete s3", cfg: s3(nil)},
		{name: "s3 missing bucket and keys", cfg: s3(func(c *S3Config) { c.Bucket, c.SecretKey = "", "" }), wantErr: "requires bucket, secret_key"},
		{name: "unknown backend", cfg: func() *Config { c := Default(); c.Session.Backend = "redis"; return c }(), wantErr: "unknown session backend"},
		{name: "bad compartment", cfg: func() *Config { c := Default(); c.WorkCompartmentID = "abc"; return c }(), wantErr: "is not an OCID"},
		{name: "empty data dir", cfg: &Config{Session: SessionConfig{Backend: BackendFile}}, wantErr: "data_dir is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireProvisioning(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.ErrorContains(t, cfg.RequireProvisioning(), "GALLEY_REGION")
	cfg.Region = "ap-tokyo-1"
	assert.ErrorContains(t, cfg.RequireProvisioning(), "GALLEY_WORK_COMPARTMENT_ID")
	cfg.WorkCompartmentID = "ocid1.compartment.oc1..x"
	assert.NoError(t, cfg.RequireProvisioning())
}
