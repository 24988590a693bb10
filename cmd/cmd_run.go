// cmd_run.go - Run Command Handler
// Hauptfunktionen: RunHandler
package cmd

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/cmd/selector"
	"github.com/attnviz/attnviz/envconfig"
	"github.com/attnviz/attnviz/logutil"
	"github.com/attnviz/attnviz/viewer"
)

// RunHandler - Haupthandler fuer den run Command
func RunHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	opts := interactiveOptions{
		Backend:  client,
		Interval: envconfig.HealthInterval(),
		Input:    viewer.DefaultInput,
	}

	if len(args) > 0 {
		opts.Input = strings.Join(args, " ")
	}

	// Statusmeldungen des Pollers nur im Debug-Modus
	level := envconfig.LogLevel()
	if level > slog.LevelDebug {
		level = slog.LevelWarn
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		opts.Lines = &scannerReader{s: bufio.NewScanner(os.Stdin)}
		opts.Out = cmd.OutOrStdout()
		opts.Columns = outputWidth(opts.Out)
		slog.SetDefault(logutil.NewLogger(os.Stderr, level))
		return runInteractive(cmd.Context(), opts)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, ">>> ")

	opts.Lines = t
	opts.Out = t
	opts.Columns = terminalWidth(os.Stdout)
	opts.PickHead = func(heads int, current attention.Head) (attention.Head, error) {
		return selector.Head("Select head:", heads, current)
	}

	// im Raw-Mode braucht jede Zeile \r\n, das erledigt der Terminal-Writer
	slog.SetDefault(logutil.NewLogger(t, level))

	return runInteractive(cmd.Context(), opts)
}

// newRunCmd - Erstellt den run Command
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [TEXT]",
		Short: "Explore attention heads interactively",
		RunE:  RunHandler,
	}
}
