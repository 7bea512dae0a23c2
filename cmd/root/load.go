package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"financemonkey/fm-cli/internal/apierror"
)

// Load refreshes the data a command is about to show. Offline runs skip
// the request. When the request fails but saved data is available, the
// failure is reported and the saved data is shown.
func (a *App) Load(ctx context.Context, cached bool, fetch func(context.Context) error) error {
	if a.Offline {
		if !cached {
			a.Printer.Message("No saved data yet; run without --offline to fetch it.")
		}
		return nil
	}

	err := fetch(ctx)
	if err == nil {
		return nil
	}
	if cached && !errors.Is(err, apierror.ErrSessionExpired) {
		a.Log.WithError(err).Warn("Refresh failed, showing saved data")
		a.Printer.Message("Refresh failed (%s); showing saved data.", apierror.Message(err, err.Error()))
		return nil
	}
	return err
}

// RequireOnline fails for commands that cannot run from the snapshot.
func (a *App) RequireOnline(cmd *cobra.Command) error {
	if a.Offline {
		return fmt.Errorf("%s needs the API and cannot run with --offline", cmd.CommandPath())
	}
	return nil
}

// Prompter reads answers from the command's input, for secrets that
// should not be passed as flags.
type Prompter struct {
	in       *bufio.Reader
	terminal *os.File
	out      io.Writer
}

// NewPrompter reads from cmd's input and prompts on its error stream.
func NewPrompter(cmd *cobra.Command) *Prompter {
	p := &Prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.terminal = f
	}
	return p
}

// Line prints prompt and reads one line without its terminator.
func (p *Prompter) Line(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads like Line but without echo when the input is a terminal.
func (p *Prompter) Secret(prompt string) (string, error) {
	if p.terminal == nil {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(p.terminal.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}

type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

// Failed reports err with the message a store recorded for it, keeping
// err reachable through errors.Is and errors.As.
func Failed(msg string, err error) error {
	if msg == "" || err == nil {
		return err
	}
	return &failure{msg: msg, err: err}
}
