package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doeshing/cmdgen/internal/app"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/commands"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/cmdgen/internal/infrastructure/config"
	"github.com/doeshing/cmdgen/internal/ports"
)

// EnvPrefix prefixes every flag when read from the environment.
const EnvPrefix = "CMDGEN"

// Options holds CLI-level configuration.
type Options struct {
	// Prompter replaces the stdin confirmation prompt.
	Prompter ports.ConfirmationPrompter
	// Stdin is read for the description when no arguments are given.
	Stdin io.Reader
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	sess := &session{viper: v, prompter: opts.Prompter}
	var genOpts commands.GenerateOptions

	root := &cobra.Command{
		Use:   "cmdgen [description...]",
		Short: "cmdgen - one safe shell command from plain words",
		Long: "cmdgen asks a language model for exactly one shell command, checks it against\n" +
			"a whitelist and a dangerous-pattern denylist, and runs it only after you type yes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := readDescription(args, opts.Stdin)
			if err != nil {
				return err
			}
			if description == "" {
				return cmd.Help()
			}
			c, err := sess.container(cmd.Context())
			if err != nil {
				return err
			}
			_, err = commands.RunGenerate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), c, description, genOpts)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default ~/.cmdgen/config.yaml)")
	pf.String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	pf.String("log-file", "", "Write logs to file instead of stderr")
	pf.String("backend", "", "Backend override (ollama|openai|anthropic|gemini|offline)")
	pf.String("model", "", "Model override")
	pf.Float64("temperature", 0, "Sampling temperature override (0-1)")
	pf.Int("retries", 0, "Maximum backend attempts override")
	pf.Duration("timeout", 0, "Per-attempt backend timeout override")
	pf.String("history-file", "", "History file override")
	for _, name := range []string{"config", "log-level", "log-file", "backend", "model", "temperature", "retries", "timeout", "history-file"} {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	root.Flags().BoolVarP(&genOpts.Execute, "execute", "x", false, "Run the command after confirmation")
	root.Flags().BoolVarP(&genOpts.AssumeYes, "yes", "y", false, "Skip the confirmation prompt (validation still applies)")
	root.Flags().BoolVarP(&genOpts.CommandOnly, "output-command-only", "c", false, "Print only the command; exit 1 when none was generated")

	source := sess.container
	root.AddCommand(
		commands.NewHistoryCommand(source),
		commands.NewDoctorCommand(source),
		commands.NewValidateCommand(source),
		commands.NewExecCommand(source),
		commands.NewReplCommand(source),
		commands.NewConfigCommand(source),
		commands.NewModelsCommand(source),
		commands.NewPolicyCommand(source),
		commands.NewInitCommand(func() *configinfra.FileLoader {
			return configinfra.NewFileLoader(v.GetString("config"))
		}),
		commands.NewVersionCommand(),
	)
	cobra.OnFinalize(sess.close)
	return root, nil
}

// ExitCode reports err on w and returns the process exit status.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(w, "error:", exitErr.Err)
		}
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	fmt.Fprintln(w, "error:", err)
	return 1
}

func readDescription(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if helpers.IsTerminal(stdin) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// session builds the container once, after flags are parsed.
type session struct {
	viper    *viper.Viper
	prompter ports.ConfirmationPrompter

	once sync.Once
	c    *app.Container
	err  error
}

func (s *session) container(ctx context.Context) (*app.Container, error) {
	s.once.Do(func() {
		prompter := s.prompter
		if prompter == nil {
			prompter = NewPrompter(os.Stdin, os.Stderr)
		}
		s.c, s.err = app.BuildContainer(ctx, app.Options{
			ConfigPath: s.viper.GetString("config"),
			LogLevel:   s.viper.GetString("log-level"),
			LogFile:    s.viper.GetString("log-file"),
			Overrides:  s.overrides(),
			Prompter:   prompter,
		})
	})
	return s.c, s.err
}

func (s *session) overrides() app.Overrides {
	o := app.Overrides{
		Backend:     s.viper.GetString("backend"),
		Model:       s.viper.GetString("model"),
		MaxRetries:  s.viper.GetInt("retries"),
		Timeout:     s.viper.GetDuration("timeout"),
		HistoryFile: s.viper.GetString("history-file"),
	}
	if s.viper.IsSet("temperature") {
		t := s.viper.GetFloat64("temperature")
		o.Temperature = &t
	}
	return o
}

func (s *session) close() {
	if s.c != nil {
		_ = s.c.Close()
		s.c = nil
	}
}
