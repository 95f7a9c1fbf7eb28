package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

// Session returns the session command group.
func Session(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create and inspect design sessions",
		Long: `A session holds one architecture design from requirements to
provisioning. Components can only be added after the requirements
have been marked complete.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SessionCreate(cmd.Context(), opts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "complete <session-id> [summary...]",
		Short: "Mark the session's requirements as complete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SessionComplete(cmd.Context(), opts, args[0], strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SessionShow(cmd.Context(), opts, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List session IDs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SessionList(cmd.Context(), opts)
		},
	})

	return cmd
}
