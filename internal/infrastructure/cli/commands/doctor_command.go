package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(source ContainerSource) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose backend, policy and history setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			if c.DoctorService == nil {
				return errors.New(ErrDoctorServiceUnavailable)
			}

			report, err := c.DoctorService.Run(cmd.Context())
			// Display report even if there were errors
			helpers.NewRenderer(cmd.OutOrStdout()).DoctorReport(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.Failed() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}
