package commands

import (
	"github.com/spf13/cobra"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
	"github.com/sogawa-yk/Galley/internal/architecture"
)

// Design returns the command group that edits a session's architecture.
func Design(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Edit the architecture of a session",
		Long: `Edit the components and connections of a session's architecture.

Examples:
  # Replace the whole architecture from a file
  galley design save SESSION -f architecture.yaml

  # Add a component and tune its configuration
  galley design add SESSION compute "Web Server" --set ocpus=2
  galley design configure SESSION COMPONENT --set shape=VM.Standard.E5.Flex

  # Connect two components
  galley design connect SESSION SOURCE TARGET --type private`,
	}

	cmd.AddCommand(designSave(opts))
	cmd.AddCommand(designAdd(opts))
	cmd.AddCommand(designRemove(opts))
	cmd.AddCommand(designConfigure(opts))
	cmd.AddCommand(designConnect(opts))
	return cmd
}

func designSave(opts *handlers.Options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save <session-id>",
		Short: "Replace the architecture from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ArchitectureSave(cmd.Context(), opts, args[0], file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Architecture file, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func designAdd(opts *handlers.Options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "add <session-id> <service-type> [display-name]",
		Short: "Add a component",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 3 {
				name = args[2]
			}
			return handlers.ComponentAdd(cmd.Context(), opts, args[0], args[1], name, sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Configuration value as key=value (repeatable)")
	return cmd
}

func designRemove(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id> <component-id>",
		Short: "Remove a component and its connections",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ComponentRemove(cmd.Context(), opts, args[0], args[1])
		},
	}
}

func designConfigure(opts *handlers.Options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "configure <session-id> <component-id>",
		Short: "Merge configuration values into a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ComponentConfigure(cmd.Context(), opts, args[0], args[1], sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Configuration value as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func designConnect(opts *handlers.Options) *cobra.Command {
	var connType, description string
	cmd := &cobra.Command{
		Use:   "connect <session-id> <source-id> <target-id>",
		Short: "Connect two components",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Connect(cmd.Context(), opts, args[0], architecture.Connection{
				SourceID:       args[1],
				TargetID:       args[2],
				ConnectionType: connType,
				Description:    description,
			})
		},
	}
	cmd.Flags().StringVar(&connType, "type", "", "Connection type, e.g. private or public")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	return cmd
}
