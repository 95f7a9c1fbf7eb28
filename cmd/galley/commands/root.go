// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package. Flags shared by every command live on the root command.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

// Root returns the root command for the galley CLI.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:   "galley",
		Short: "Design OCI architectures and provision them with Resource Manager",
		Long: `galley keeps an architecture design per session, validates it,
synthesizes a Terraform bundle from it and runs plan, apply or destroy
jobs on OCI Resource Manager.

Configuration is read from galley.yaml (see --config) and GALLEY_*
environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: galley.yaml if present)")
	flags.StringVarP(&opts.Output, "output", "o", handlers.OutputText, "Output format: text or json")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write provisioning metrics in Prometheus text format to this file")

	// Design
	cmd.AddCommand(Session(opts))
	cmd.AddCommand(Design(opts))
	cmd.AddCommand(Services(opts))
	cmd.AddCommand(Validate(opts))
	cmd.AddCommand(Synthesize(opts))
	cmd.AddCommand(Export(opts))
	cmd.AddCommand(UpdateFile(opts))

	// Provisioning
	cmd.AddCommand(Plan(opts))
	cmd.AddCommand(Apply(opts))
	cmd.AddCommand(Destroy(opts))
	cmd.AddCommand(Job(opts))
	cmd.AddCommand(OCI(opts))

	// Utility
	cmd.AddCommand(Doctor(opts))
	cmd.AddCommand(Version())

	return cmd
}
