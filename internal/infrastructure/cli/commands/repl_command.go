package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgen/internal/app"
	"github.com/doeshing/cmdgen/internal/application/execution"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

const (
	replPrompt    = "cmdgen> "
	confirmPrompt = "Type 'yes' to run it: "
	replHelp      = `Describe a task in plain words to get a command for it.
  history [n]        show the last n interactions (default 10)
  execute <command>  validate, confirm and run a command
  feedback <1-5>     rate the last interaction
  help               show this help
  exit | quit        leave`
)

// LineReader is the part of a readline instance the REPL uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(string)
}

// NewReplCommand starts an interactive session.
func NewReplCommand(source ContainerSource) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:            replPrompt,
				InterruptPrompt:   "^C",
				EOFPrompt:         "exit",
				HistorySearchFold: true,
			})
			if err != nil {
				return fmt.Errorf("initialize line editor: %w", err)
			}
			defer rl.Close()
			seedLineHistory(cmd.Context(), rl, c)

			return RunRepl(cmd.Context(), rl, cmd.OutOrStdout(), c)
		},
	}
}

// seedLineHistory makes earlier descriptions reachable with the arrow keys.
func seedLineHistory(ctx context.Context, rl *readline.Instance, c *app.Container) {
	records, err := c.HistoryStore.LoadAll(ctx)
	if err != nil {
		return
	}
	for _, rec := range records {
		_ = rl.SaveHistory(rec.Prompt)
	}
}

// RunRepl reads lines until exit, EOF or cancellation.
func RunRepl(ctx context.Context, rl LineReader, out io.Writer, c *app.Container) error {
	previous := c.Gate.Prompter
	c.Gate.Prompter = &linePrompter{rl: rl, out: out}
	defer func() { c.Gate.Prompter = previous }()

	fmt.Fprintln(out, "Type 'help' for commands, 'exit' to quit.")
	renderer := helpers.NewRenderer(out)
	for {
		if ctx.Err() != nil {
			return nil
		}
		rl.SetPrompt(replPrompt)
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		word, rest, _ := strings.Cut(input, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(word) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(out, replHelp)
		case "history":
			limit := DefaultHistoryLimit
			if n, err := strconv.Atoi(rest); err == nil && n > 0 {
				limit = n
			}
			if err := ListHistory(ctx, out, c.HistoryStore, limit); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "execute":
			if rest == "" {
				fmt.Fprintln(out, "usage: execute <command>")
				continue
			}
			outcome, err := c.Gate.Execute(ctx, execution.Request{Command: rest})
			renderer.Outcome(outcome)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "feedback":
			rating, err := strconv.Atoi(rest)
			if err != nil || !domain.ValidFeedback(rating) {
				fmt.Fprintf(out, "usage: feedback <%d-%d>\n", domain.MinFeedback, domain.MaxFeedback)
				continue
			}
			if err := c.HistoryStore.UpdateLastFeedback(ctx, rating); err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintf(out, "Recorded rating %d.\n", rating)
		default:
			_, err := RunGenerate(ctx, out, out, c, input, GenerateOptions{Execute: true})
			var exitErr *ExitError
			if err != nil && !errors.As(err, &exitErr) {
				fmt.Fprintln(out, "error:", err)
			}
		}
	}
}

// linePrompter asks for confirmation on the REPL's own line editor so the
// answer is not swallowed by a second stdin reader.
type linePrompter struct {
	rl  LineReader
	out io.Writer
}

func (p *linePrompter) Enabled() bool {
	return true
}

func (p *linePrompter) Confirm(command string) (bool, error) {
	fmt.Fprintf(p.out, "Command:\n  %s\n", command)
	p.rl.SetPrompt(confirmPrompt)
	defer p.rl.SetPrompt(replPrompt)

	answer, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return domain.IsConsent(answer), nil
}
