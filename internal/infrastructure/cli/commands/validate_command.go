package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

// NewValidateCommand checks a command against the safety policy without running it.
func NewValidateCommand(source ContainerSource) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <command...>",
		Short: "Check a command against the safety policy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			verdict := c.Validator.Validate(command)
			helpers.NewRenderer(cmd.OutOrStdout()).Verdict(command, verdict)
			if !verdict.Accepted {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}
