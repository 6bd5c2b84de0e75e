package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	configapp "github.com/doeshing/cmdgen/internal/application/config"
	"github.com/doeshing/cmdgen/internal/application/extract"
	"github.com/doeshing/cmdgen/internal/application/prompt"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/ai"
	contextcollector "github.com/doeshing/cmdgen/internal/infrastructure/context"
	"github.com/doeshing/cmdgen/internal/ports"
)

const modelTestDescription = "print the current working directory"

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(source ContainerSource) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List, test and select inference backends",
	}

	modelsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List supported backends and their default models",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				listModels(cmd.OutOrStdout(), c.Config)
				return nil
			},
		},
		&cobra.Command{
			Use:   "test [backend]",
			Short: "Send a probe request and show the extracted command",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				cfg := c.Config
				if len(args) == 1 && args[0] != cfg.Backend.Name {
					cfg.Backend = domain.BackendSettings{Name: args[0], Temperature: cfg.Backend.Temperature, MaxTokens: cfg.Backend.MaxTokens}
				}
				return testModel(cmd.Context(), cmd.OutOrStdout(), ai.NewFactory(), cfg)
			},
		},
		newModelsUseCommand(source),
	)

	return modelsCmd
}

// newModelsUseCommand creates the 'models use' subcommand
func newModelsUseCommand(source ContainerSource) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "use <backend>",
		Short: "Make a backend the configured default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := c.ConfigLoader.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if args[0] != cfg.Backend.Name {
				cfg.Backend = domain.BackendSettings{Name: args[0], Temperature: cfg.Backend.Temperature, MaxTokens: cfg.Backend.MaxTokens}
			}
			if model != "" {
				cfg.Backend.Model = model
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := c.ConfigLoader.Save(cfg); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default backend set to %s (%s).\n", cfg.GetBackendName(), cfg.GetModel())
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model name (default depends on the backend)")
	return cmd
}

func listModels(out io.Writer, cfg domain.Config) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tDEFAULT MODEL\tAPI KEY\tCURRENT")
	for _, name := range domain.KnownBackends {
		current := ""
		if name == cfg.GetBackendName() {
			current = "* " + cfg.GetModel()
		}
		key := ai.AuthEnvVar(name, "")
		if key == "" {
			key = "-"
		}
		model := domain.DefaultModels[name]
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, model, key, current)
	}
	w.Flush()
}

// testModel runs one probe through the bare backend, without retries or history.
func testModel(ctx context.Context, out io.Writer, factory ports.BackendFactory, cfg domain.Config) error {
	backend, err := factory.ForConfig(cfg)
	if err != nil {
		return err
	}
	osContext, err := contextcollector.NewOSCollector(cfg.GetExecutionShell()).Collect(ctx)
	if err != nil {
		return err
	}
	instruction, err := prompt.MustDefault().Compose(modelTestDescription, osContext)
	if err != nil {
		return err
	}

	testCtx, cancel := context.WithTimeout(ctx, cfg.GetBackendTimeout())
	defer cancel()
	raw, err := backend.Invoke(testCtx, ports.BackendRequest{
		Instruction: instruction,
		Temperature: cfg.Backend.Temperature,
		MaxTokens:   cfg.GetMaxTokens(),
	})
	if err != nil {
		return fmt.Errorf("backend %s test failed: %w", backend.Name(), err)
	}

	command, ok := extract.Extract(raw)
	if !ok {
		return fmt.Errorf("backend %s answered but no command could be extracted from %q", backend.Name(), raw)
	}
	fmt.Fprintf(out, "Backend %s responded: %s\n", backend.Name(), command)
	return nil
}
