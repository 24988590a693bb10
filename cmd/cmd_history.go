// cmd_history.go - History und Show Commands
// Hauptfunktionen: HistoryHandler, ShowHandler, showRun
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/heatmap"
)

const (
	maxInputWidth = 40
	timeLayout    = "2006-01-02 15:04:05"
)

// HistoryHandler - Listet die gespeicherten Runs
func HistoryHandler(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	history, err := client.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	var data [][]string
	for _, r := range history.Runs {
		data = append(data, []string{
			r.ID,
			runewidth.Truncate(heatmap.Printable(r.Input), maxInputWidth, "…"),
			strconv.Itoa(r.Tokens),
			strconv.Itoa(r.Heads),
			r.CreatedAt.Local().Format(timeLayout),
		})
	}

	table := newTable(cmd.OutOrStdout(), []string{"ID", "INPUT", "TOKENS", "HEADS", "CREATED"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

// ShowHandler - Zeigt einen gespeicherten Run
func ShowHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	resp, err := client.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := showRun(resp, w); err != nil {
		return err
	}

	if !cmd.Flags().Changed("head") {
		return nil
	}

	head, err := cmd.Flags().GetInt("head")
	if err != nil {
		return err
	}

	h := attention.Head(head - 1).Clamp(resp.AttentionWeights.Heads())
	m, err := attention.Slice(resp.AttentionWeights, h, resp.InputTokens)
	if err != nil {
		return err
	}

	grid, err := heatmap.Render(m, resp.InputTokens, h)
	if err != nil {
		return err
	}

	return heatmap.WriteANSI(w, grid, outputWidth(w))
}

func showRun(resp *api.ProcessResponse, w io.Writer) error {
	tableRender := func(header string, rows func() [][]string) {
		fmt.Fprintln(w, " ", header)
		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.SetAutoWrapText(false)
		table.AppendBulk(rows())
		table.Render()
		fmt.Fprintln(w)
	}

	tableRender("Run", func() (rows [][]string) {
		rows = append(rows, []string{"", "id", resp.ID})
		rows = append(rows, []string{"", "input", heatmap.Printable(resp.Input)})
		if !resp.CreatedAt.IsZero() {
			rows = append(rows, []string{"", "created", resp.CreatedAt.Local().Format(time.RFC3339)})
		}
		return
	})

	dims := resp.ModelDimensions
	tableRender("Model", func() (rows [][]string) {
		rows = append(rows, []string{"", "d_model", strconv.Itoa(dims.DModel)})
		rows = append(rows, []string{"", "heads", strconv.Itoa(dims.NHead)})
		rows = append(rows, []string{"", "head dim", strconv.Itoa(dims.HeadDim)})
		rows = append(rows, []string{"", "feed-forward", strconv.Itoa(dims.DimFeedforward)})
		return
	})

	tableRender("Tokens", func() (rows [][]string) {
		for i, t := range resp.InputTokens {
			rows = append(rows, []string{"", strconv.Itoa(i + 1), heatmap.Printable(t)})
		}
		return
	})

	return nil
}

// newHistoryCmd - Erstellt den history Command
func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List processed inputs",
		Args:    cobra.NoArgs,
		PreRunE: checkServerHeartbeat,
		RunE:    HistoryHandler,
	}
	historyCmd.Flags().Int("limit", 20, "Number of runs to list")
	return historyCmd
}

// newShowCmd - Erstellt den show Command
func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:     "show ID",
		Short:   "Show a processed input",
		Args:    cobra.ExactArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    ShowHandler,
	}
	showCmd.Flags().Int("head", 1, "Also draw the heatmap of this head (1-based)")
	return showCmd
}
