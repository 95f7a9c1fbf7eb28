package oci

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"
)

// Signer signs an outgoing request in place.
type Signer interface {
	Sign(*http.Request) error
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(*http.Request) error

// Sign calls f(r).
func (f SignerFunc) Sign(r *http.Request) error { return f(r) }

// AuthConfig selects the credentials used to sign requests.
type AuthConfig struct {
	ResourcePrincipal bool
	ConfigFile        string // defaults to ~/.oci/config
	Profile           string // defaults to DEFAULT
}

// Identity is what the credentials reveal about the caller.
type Identity struct {
	TenancyID string
	Region    string
}

// NewSigner builds a request signer from the configured credentials.
func NewSigner(cfg AuthConfig) (Signer, Identity, error) {
	provider, err := configurationProvider(cfg)
	if err != nil {
		return nil, Identity{}, fmt.Errorf("%w: %w", errAuth, err)
	}

	tenancy, err := provider.TenancyOCID()
	if err != nil {
		return nil, Identity{}, fmt.Errorf("%w: failed to read tenancy: %w", errAuth, err)
	}
	// Region is optional in some profiles; callers fall back to their own setting.
	region, _ := provider.Region()

	signer := common.DefaultRequestSigner(provider)
	return SignerFunc(func(r *http.Request) error {
		if r.Header.Get("Date") == "" {
			r.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
		}
		return signer.Sign(r)
	}), Identity{TenancyID: tenancy, Region: region}, nil
}

func configurationProvider(cfg AuthConfig) (common.ConfigurationProvider, error) {
	if cfg.ResourcePrincipal {
		return auth.ResourcePrincipalConfigurationProvider()
	}
	if cfg.ConfigFile == "" && cfg.Profile == "" {
		return common.DefaultConfigProvider(), nil
	}
	path := cfg.ConfigFile
	if path == "" {
		path = "~/.oci/config"
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "DEFAULT"
	}
	return common.ConfigurationProviderFromFileWithProfile(path, profile, "")
}
