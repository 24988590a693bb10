// cmd_render.go - Render Command
// Hauptfunktionen: RenderHandler, renderAllHeads, writeDiagram
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/diagram"
	"github.com/attnviz/attnviz/envconfig"
	"github.com/attnviz/attnviz/heatmap"
	"github.com/attnviz/attnviz/viewer"
)

// RenderHandler - Schickt den Input an den Server und zeichnet die Heatmap
func RenderHandler(cmd *cobra.Command, args []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	head, err := cmd.Flags().GetInt("head")
	if err != nil {
		return err
	}

	allHeads, err := cmd.Flags().GetBool("all-heads")
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	diagramPath, err := cmd.Flags().GetString("diagram")
	if err != nil {
		return err
	}

	input, err := readInput(args, file, os.Stdin)
	if err != nil {
		return err
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	surface := &captureSurface{}
	session := viewer.NewSession(client, surface)
	if status := session.CheckHealth(cmd.Context()); status != viewer.StatusRunning {
		return fmt.Errorf("%w at %s, start it with 'attnviz serve'", viewer.ErrBackendUnavailable, envconfig.Host())
	}

	if err := session.Submit(cmd.Context(), input); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	columns := outputWidth(w)

	if allHeads {
		if err := renderAllHeads(cmd.Context(), session.State(), output, w, columns); err != nil {
			return err
		}
	} else {
		if err := session.SelectHead(attention.Head(head - 1)); err != nil {
			return err
		}

		if output != "" {
			if err := writeSVGFile(output, surface.grid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
		} else if err := heatmap.WriteANSI(w, surface.grid, columns); err != nil {
			return err
		}
	}

	if diagramPath != "" {
		if err := writeDiagram(diagramPath, session.State().Dimensions); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", diagramPath)
	}

	return nil
}

// renderAllHeads zeichnet alle Heads parallel. Mit output wird pro Head eine
// SVG-Datei in das Verzeichnis geschrieben, sonst ANSI in Head-Reihenfolge.
func renderAllHeads(ctx context.Context, st viewer.State, output string, w io.Writer, columns int) error {
	heads := st.Weights.Heads()

	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return err
		}
	}

	bufs := make([]bytes.Buffer, heads)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, h := range attention.Heads(heads) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			m, err := attention.Slice(st.Weights, h, st.Tokens)
			if err != nil {
				return err
			}

			grid, err := heatmap.Render(m, st.Tokens, h)
			if err != nil {
				return err
			}

			if output != "" {
				return writeSVGFile(filepath.Join(output, fmt.Sprintf("head-%s.svg", h)), grid)
			}

			return heatmap.WriteANSI(&bufs[h], grid, columns)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintf(w, "wrote %d heatmaps to %s\n", heads, output)
		return nil
	}

	for i := range bufs {
		if _, err := bufs[i].WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	return nil
}

// writeDiagram - Schreibt das Architektur-Diagramm als SVG
func writeDiagram(path string, dims api.ModelDimensions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	sc := diagram.Build(diagram.Dimensions{
		DModel:         dims.DModel,
		NHead:          dims.NHead,
		HeadDim:        dims.HeadDim,
		DimFeedforward: dims.DimFeedforward,
	})

	if err := sc.WriteSVG(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return terminalWidth(f)
	}
	return defaultColumns
}

// newRenderCmd - Erstellt den render Command
func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:     "render [TEXT]",
		Short:   "Draw the attention heatmap of a text",
		PreRunE: checkServerHeartbeat,
		RunE:    RenderHandler,
	}

	renderCmd.Flags().Int("head", 1, "Head to draw (1-based, clamped to the available heads)")
	renderCmd.Flags().Bool("all-heads", false, "Draw every head")
	renderCmd.Flags().StringP("output", "o", "", "Write SVG to this file (a directory with --all-heads) instead of the terminal")
	renderCmd.Flags().StringP("file", "f", "", "Read the input text from a file, - for stdin")
	renderCmd.Flags().String("diagram", "", "Also write the architecture diagram as SVG to this file")

	return renderCmd
}
