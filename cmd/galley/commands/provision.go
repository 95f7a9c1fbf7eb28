package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

// Plan returns the command that runs a Resource Manager plan job.
func Plan(opts *handlers.Options) *cobra.Command {
	return provisionCommand(opts, "plan", "Run terraform plan through Resource Manager", `
Examples:
  galley plan SESSION
  galley plan SESSION --var adb_admin_password=...`)
}

// Apply returns the command that runs an auto-approved apply job.
func Apply(opts *handlers.Options) *cobra.Command {
	return provisionCommand(opts, "apply", "Run terraform apply through Resource Manager", `
The job is auto-approved. galley asks for confirmation unless --yes is
given; without a terminal --yes is required.`)
}

// Destroy returns the command that runs an auto-approved destroy job.
func Destroy(opts *handlers.Options) *cobra.Command {
	return provisionCommand(opts, "destroy", "Run terraform destroy through Resource Manager", `
Destroys everything the session's stack created. galley asks for
confirmation unless --yes is given.`)
}

func provisionCommand(opts *handlers.Options, operation, short, long string) *cobra.Command {
	var (
		dir  string
		vars []string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   operation + " <session-id>",
		Short: short,
		Long:  short + ".\n" + long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Provision(cmd.Context(), opts, operation, args[0], dir, vars, yes)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Terraform directory (default: the session's synthesized bundle)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Stack variable as name=value (repeatable)")
	if operation != "plan" {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	}
	return cmd
}

// Job returns the command that inspects a Resource Manager job.
func Job(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "job <job-id>",
		Short: "Show the state and logs of a Resource Manager job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.JobStatus(cmd.Context(), opts, args[0])
		},
	}
}

// OCI returns the command that runs an allow-listed OCI CLI command.
func OCI(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "oci -- <service> <command...>",
		Short: "Run an OCI CLI command from the allowed services",
		Long: `Run an OCI CLI command. Only commands for allowed services run, for
example compute, network, os, db, oke or resource-manager. The leading
"oci" is optional.

Examples:
  galley oci -- compute instance list --compartment-id ocid1.compartment...
  galley oci "network vcn list --compartment-id ocid1.compartment..."`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.OCI(cmd.Context(), opts, joinArgs(args))
		},
	}
}

// Doctor returns the command that checks the local environment.
func Doctor(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, configuration and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), opts)
		},
	}
}

// joinArgs rebuilds a command line that splits back into args. A single
// argument is passed through so a pre-quoted command keeps its quoting.
func joinArgs(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'"'"'`) + "'"
	}
	return strings.Join(quoted, " ")
}
