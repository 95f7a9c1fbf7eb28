package commands

import (
	"github.com/spf13/cobra"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

// Services returns the command listing the template library.
func Services(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the service types components can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Services(cmd.Context(), opts)
		},
	}
}

// Validate returns the command that checks a session's architecture.
func Validate(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <session-id>",
		Short: "Validate the architecture against the rule set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Validate(cmd.Context(), opts, args[0])
		},
	}
}

// Synthesize returns the command that writes the Terraform bundle.
func Synthesize(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "synthesize <session-id>",
		Short: "Generate the Terraform bundle for a session",
		Long: `Generate main.tf, variables.tf, components.tf and
terraform.tfvars.example for the session's architecture. Files from a
previous run are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Synthesize(cmd.Context(), opts, args[0])
		},
	}
}

// Export returns the command that renders a session for sharing.
func Export(opts *handlers.Options) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a summary, a Mermaid diagram or the Terraform bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Export(cmd.Context(), opts, args[0], kind)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", handlers.ExportAll, "What to export: summary, mermaid, bundle or all")
	return cmd
}

// UpdateFile returns the command that replaces one bundle file.
func UpdateFile(opts *handlers.Options) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "update-file <session-id> <path>",
		Short: "Overwrite a file inside the session's Terraform directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.UpdateFile(cmd.Context(), opts, args[0], args[1], from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "-", "Read the new content from this file, or - for stdin")
	return cmd
}
