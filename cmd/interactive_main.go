// interactive_main.go - Interaktive Session
// Hauptfunktionen: runInteractive, readLoop, submit
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/cmd/selector"
	"github.com/attnviz/attnviz/heatmap"
	"github.com/attnviz/attnviz/viewer"
)

// lineReader liefert eine Eingabezeile, io.EOF beendet die Session
type lineReader interface {
	ReadLine() (string, error)
}

// scannerReader liest Zeilen, wenn stdin kein Terminal ist
type scannerReader struct {
	s *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type interactiveOptions struct {
	Backend  viewer.Backend
	Lines    lineReader
	Out      io.Writer
	Columns  int
	Interval time.Duration

	// Input wird beim Start verarbeitet, wenn das Backend laeuft
	Input string

	// PickHead oeffnet den Head-Selector; nil ohne Terminal
	PickHead func(heads int, current attention.Head) (attention.Head, error)
}

// runInteractive startet Health-Poller und Eingabeschleife und endet mit
// /bye oder EOF
func runInteractive(ctx context.Context, opts interactiveOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := viewer.NewSession(opts.Backend, &ansiSurface{w: opts.Out, columns: opts.Columns})

	if session.CheckHealth(ctx) == viewer.StatusRunning {
		submit(ctx, session, opts.Out, opts.Input)
	} else {
		fmt.Fprintln(opts.Out, "attnviz server is not running, start it with 'attnviz serve'")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Poll(gctx, opts.Interval)
	})
	g.Go(func() error {
		defer cancel()
		return readLoop(gctx, session, opts)
	})

	return g.Wait()
}

func readLoop(ctx context.Context, session *viewer.Session, opts interactiveOptions) error {
	w := opts.Out

	for {
		line, err := opts.Lines.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/bye":
			return nil
		case line == "/?", line == "/help":
			usage(w)
		case line == "/status":
			showStatus(w, session.State())
		case line == "/tokens":
			st := session.State()
			if len(st.Tokens) == 0 {
				fmt.Fprintln(w, "no input processed yet")
			}
			for i, t := range st.Tokens {
				fmt.Fprintf(w, "%3d  %s\n", i+1, heatmap.Printable(t))
			}
		case strings.HasPrefix(line, "/head "):
			st := session.State()
			h, err := attention.ParseHead(strings.TrimPrefix(line, "/head "), st.Heads())
			if err != nil {
				fmt.Fprintf(w, "Usage: /head <1-%d>\n", st.Heads())
				continue
			}
			if err := session.SelectHead(h); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
		case line == "/heads":
			st := session.State()
			if opts.PickHead == nil {
				for _, h := range attention.Heads(st.Heads()) {
					fmt.Fprintf(w, "Head %s\n", h)
				}
				continue
			}

			h, err := opts.PickHead(st.Heads(), st.Head)
			if errors.Is(err, selector.ErrCancelled) {
				continue
			} else if err != nil {
				return err
			}
			if err := session.SelectHead(h); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
		case strings.HasPrefix(line, "/"):
			args := strings.Fields(line)
			fmt.Fprintf(w, "Unknown command '%s'. Type /? for help\n", args[0])
		default:
			submit(ctx, session, w, line)
		}
	}
}

func submit(ctx context.Context, session *viewer.Session, w io.Writer, text string) {
	err := session.Submit(ctx, text)
	switch {
	case err == nil:
	case errors.Is(err, viewer.ErrEmptyInput):
	case errors.Is(err, viewer.ErrBackendUnavailable):
		fmt.Fprintln(w, "attnviz server is not running, start it with 'attnviz serve'")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func showStatus(w io.Writer, st viewer.State) {
	fmt.Fprintf(w, "backend: %s\n", st.Status)
	fmt.Fprintf(w, "input:   %s\n", st.Input)
	fmt.Fprintf(w, "head:    %s of %d\n", st.Head, st.Heads())
	if st.Error != "" {
		fmt.Fprintf(w, "error:   %s\n", st.Error)
	}
}
