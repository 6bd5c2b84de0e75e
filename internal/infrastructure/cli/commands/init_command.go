package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	configapp "github.com/doeshing/cmdgen/internal/application/config"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/ai"
	configinfra "github.com/doeshing/cmdgen/internal/infrastructure/config"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

const msgInitCancelled = "Init cancelled."

// LoaderSource returns the config loader selected by the global flags.
type LoaderSource func() *configinfra.FileLoader

// NewInitCommand creates the init command, a short wizard that writes
// ~/.cmdgen/config.yaml.
func NewInitCommand(loaderFor LoaderSource) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Choose a backend and write the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), loaderFor(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config without prompting")
	return cmd
}

func runInitWizard(in io.Reader, out io.Writer, loader *configinfra.FileLoader, force bool) error {
	reader := bufio.NewReader(in)
	path := loader.Path()

	_, statErr := os.Stat(path)
	exists := statErr == nil
	if exists && !force && !helpers.PromptForYesNo(out, reader, fmt.Sprintf("%s exists. Overwrite?", path), false) {
		fmt.Fprintln(out, msgInitCancelled)
		return nil
	}

	cfg, err := configinfra.DefaultConfig()
	if err != nil {
		return err
	}
	cfg = promptForPreferences(out, reader, cfg)

	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if exists {
		backup, err := loader.Backup()
		if err != nil {
			return fmt.Errorf("failed to create configuration backup: %w", err)
		}
		fmt.Fprintf(out, "Existing config backed up to: %s\n", backup)
	}
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	displayCompletionInstructions(out, path, cfg)
	return nil
}

func promptForPreferences(out io.Writer, reader *bufio.Reader, cfg domain.Config) domain.Config {
	defaults := cfg.Backend

	backend := helpers.PromptForChoice(out, reader, "Backend", domain.KnownBackends, defaults.Name)
	if backend != defaults.Name {
		cfg.Backend = domain.BackendSettings{Name: backend, Temperature: defaults.Temperature, MaxTokens: defaults.MaxTokens}
	}
	if backend != domain.BackendOffline {
		cfg.Backend.Model = helpers.PromptForString(out, reader, "Model", cfg.GetModel())
	}
	if backend == domain.BackendOllama || backend == domain.BackendOpenAI {
		cfg.Backend.Endpoint = helpers.PromptForString(out, reader, "Endpoint (empty for the provider default)", cfg.Backend.Endpoint)
	}

	cfg.Execution.ConfirmBeforeExecute = helpers.PromptForYesNo(out, reader,
		"Ask for 'yes' before running commands?", cfg.Execution.ConfirmBeforeExecute)

	cfg.History.Backend = helpers.PromptForChoice(out, reader, "History store",
		[]string{domain.HistoryBackendJSONL, domain.HistoryBackendSQLite}, cfg.GetHistoryBackend())
	if cfg.History.Backend == domain.HistoryBackendSQLite && cfg.History.Path == "~/.cmdgen/history.jsonl" {
		cfg.History.Path = "~/.cmdgen/history.db"
	}
	return cfg
}

func displayCompletionInstructions(out io.Writer, path string, cfg domain.Config) {
	fmt.Fprintf(out, "\nConfiguration written: %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	if envVar := ai.AuthEnvVar(cfg.Backend.Name, cfg.Backend.AuthEnvVar); envVar != "" {
		fmt.Fprintf(out, "  export %s=your-key-here\n", envVar)
	}
	fmt.Fprintln(out, "  cmdgen doctor")
	fmt.Fprintln(out, "  cmdgen \"list files in this directory\"")
}
