package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
	"github.com/doeshing/cmdgen/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin and stderr.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. It is only enabled
// when in is a terminal, so piped input never answers a confirmation.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: helpers.IsTerminal(in),
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm shows the command and requires the word "yes".
func (p *Prompter) Confirm(command string) (bool, error) {
	fmt.Fprintf(p.out, "Command:\n  %s\n", command)
	fmt.Fprint(p.out, "Type 'yes' to run it (anything else cancels): ")
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	return domain.IsConsent(line), nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
