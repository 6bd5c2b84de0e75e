package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgen/internal/application/execution"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

// NewExecCommand runs a command the user typed through the same gate as
// generated ones.
func NewExecCommand(source ContainerSource) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Validate, confirm and run a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			outcome, err := c.Gate.Execute(cmd.Context(), execution.Request{
				Command:   strings.Join(args, " "),
				Confirmed: assumeYes,
			})
			helpers.NewRenderer(cmd.OutOrStdout()).Outcome(outcome)
			if err != nil {
				return err
			}
			return outcomeError(outcome)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
