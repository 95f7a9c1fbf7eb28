// Package ocicli runs OCI CLI commands that pass a service allow-list.
//
// A command is tokenized with shell quoting rules, an optional leading
// "oci" is dropped and the first remaining token must name an allowed
// service. Nothing is spawned for a rejected command.
package ocicli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/shlex"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// Binary is the OCI CLI executable name.
const Binary = "oci"

// AllowedServices are the CLI service namespaces that may be invoked.
var AllowedServices = []string{
	"apigateway",
	"artifacts",
	"bv",
	"compute",
	"container-instances",
	"db",
	"devops",
	"dns",
	"events",
	"functions",
	"iam",
	"kms",
	"logging",
	"monitoring",
	"network",
	"oke",
	"os",
	"resource-manager",
	"vault",
}

// SetupHint is attached to a result when the CLI has no configuration.
const SetupHint = `OCI CLI is not configured. To set up:
1. API key auth: run 'oci setup config' to create ~/.oci/config
2. Resource principal: set OCI_RESOURCE_PRINCIPAL_VERSION (Container Instances)
See: https://docs.oracle.com/en-us/iaas/Content/API/Concepts/sdkconfig.htm`

var missingConfigMarkers = []string{"Could not find config file", "ConfigFileNotFound"}

// Result is the outcome of one CLI invocation.
type Result struct {
	Success   bool   `json:"success"`
	Command   string `json:"command"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	SetupHint string `json:"setup_hint,omitempty"`
}

// Gateway validates and runs OCI CLI commands.
type Gateway struct {
	runner            Runner
	resourcePrincipal bool
	timeout           time.Duration
	log               logr.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithResourcePrincipal adds `--auth resource_principal` to every call.
func WithResourcePrincipal(enabled bool) Option {
	return func(g *Gateway) { g.resourcePrincipal = enabled }
}

// WithTimeout bounds each invocation.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// New returns a Gateway that runs commands through runner.
func New(runner Runner, opts ...Option) *Gateway {
	g := &Gateway{runner: runner, timeout: 120 * time.Second, log: logr.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Parse tokenizes command and returns the argument list passed to the
// CLI binary.
func (g *Gateway) Parse(command string) ([]string, error) {
	tokens, err := shlex.Split(command)
	if err != nil {
		return nil, errdefs.NotAllowed("command not allowed: %q (%v)", command, err)
	}
	if len(tokens) > 0 && tokens[0] == Binary {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, errdefs.NotAllowed("command not allowed: %q (no service given)", command)
	}
	if !slices.Contains(AllowedServices, tokens[0]) {
		return nil, errdefs.NotAllowed("command not allowed: %q (service %q is not in the allow-list)", command, tokens[0])
	}

	var args []string
	if g.resourcePrincipal {
		args = append(args, "--auth", "resource_principal")
	}
	return append(args, tokens...), nil
}

// Run validates and executes command. A non-zero exit is reported in the
// Result, not as an error.
func (g *Gateway) Run(ctx context.Context, command string) (*Result, error) {
	args, err := g.Parse(command)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.log.V(1).Info("running oci cli", "args", args)
	out, runErr := g.runner.Run(runCtx, Binary, args)

	res := &Result{
		Command:  strings.Join(append([]string{Binary}, args...), " "),
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
	}
	switch {
	case runErr == nil:
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.ExitCode = -1
		res.Stderr = strings.TrimSpace(res.Stderr + fmt.Sprintf("\ncommand timed out after %v", g.timeout))
	case errors.Is(runErr, exec.ErrNotFound):
		return nil, errdefs.Precondition("%s CLI not found on PATH; run `galley doctor`", Binary)
	default:
		return nil, fmt.Errorf("failed to run %s: %w", Binary, runErr)
	}

	res.Success = res.ExitCode == 0
	if !res.Success && needsSetup(res.Stderr) {
		res.SetupHint = SetupHint
	}
	return res, nil
}

func needsSetup(stderr string) bool {
	for _, m := range missingConfigMarkers {
		if strings.Contains(stderr, m) {
			return true
		}
	}
	return false
}
