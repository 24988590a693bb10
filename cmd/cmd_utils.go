// cmd_utils.go - Gemeinsame Hilfsfunktionen
// Hauptfunktionen: checkServerHeartbeat, readInput, terminalWidth, newTable
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/attnviz/attnviz/api"
)

const defaultColumns = 80

var errNoInput = errors.New("no input given, pass TEXT, --file or pipe text on stdin")

// checkServerHeartbeat - Prueft ob der Server laeuft
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		return fmt.Errorf("attnviz server not responding, start it with 'attnviz serve': %w", err)
	}
	return nil
}

// decodeText liest r als UTF-8, ein BOM (UTF-8 oder UTF-16) wird
// ausgewertet und entfernt
func decodeText(r io.Reader) (string, error) {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, tr))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readInput - Bestimmt den Input aus Argumenten, --file oder stdin.
// path "-" liest stdin.
func readInput(args []string, path string, stdin *os.File) (string, error) {
	switch {
	case path == "-":
		return decodeText(stdin)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return decodeText(f)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case !term.IsTerminal(int(stdin.Fd())):
		return decodeText(stdin)
	}

	return "", errNoInput
}

// terminalWidth - Breite des Terminals oder defaultColumns
func terminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultColumns
}

// newTable - Tabelle im Stil von "attnviz history"
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	return table
}
