// ansi.go - Zeichnet ein Grid als 24-Bit-ANSI-Bloecke fuers Terminal
package heatmap

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiGray  = "\033[37m"

	maxLabelWidth = 12
)

// Printable strips control characters from s so token text cannot emit
// its own escape sequences. Tabs and newlines become spaces.
func Printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case !unicode.IsControl(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)
}

// WriteANSI draws g using true-color block characters. columns is the
// terminal width; 0 means unknown. Wide grids fall back to one character
// per cell.
func WriteANSI(w io.Writer, g *Grid, columns int) error {
	bw := bufio.NewWriter(w)

	if g.Empty() {
		return bw.Flush()
	}

	n := len(g.RowLabels)

	labelWidth := 0
	for _, l := range g.RowLabels {
		labelWidth = max(labelWidth, runewidth.StringWidth(Printable(l.Text)))
	}
	labelWidth = min(labelWidth, maxLabelWidth)

	cellWidth := 2
	if columns > 0 && labelWidth+1+n*cellWidth > columns {
		cellWidth = 1
	}

	fmt.Fprintf(bw, "%s%s%s\n", ansiBold, g.Title.Text, ansiReset)

	// Spaltenindizes ueber dem Grid, modulo 10
	fmt.Fprint(bw, strings.Repeat(" ", labelWidth+1), ansiGray)
	for j := range n {
		fmt.Fprintf(bw, "%-*d", cellWidth, j%10)
	}
	fmt.Fprintln(bw, ansiReset)

	block := strings.Repeat("█", cellWidth)
	for i, l := range g.RowLabels {
		label := runewidth.Truncate(Printable(l.Text), labelWidth, "…")
		fmt.Fprint(bw, runewidth.FillLeft(label, labelWidth), " ")
		for j := range n {
			c := g.Cell(i, j).Fill
			fmt.Fprintf(bw, "\033[38;2;%d;%d;%dm%s", c.R, c.G, c.B, block)
		}
		fmt.Fprintln(bw, ansiReset)
	}

	fmt.Fprintf(bw, "%srows: %s, columns: %s%s\n", ansiGray, RowCaption, ColumnCaption, ansiReset)
	for j, l := range g.ColumnLabels {
		fmt.Fprintf(bw, "%s%d%s %s  ", ansiGray, j, ansiReset, Printable(l.Text))
	}
	fmt.Fprintln(bw)

	lo, hi := NewScale(g.DomainMax).Color(0), NewScale(g.DomainMax).Color(g.DomainMax)
	fmt.Fprintf(bw, "%s0%s \033[38;2;%d;%d;%dm██%s … \033[38;2;%d;%d;%dm██%s %s%.4f%s\n",
		ansiGray, ansiReset,
		lo.R, lo.G, lo.B, ansiReset,
		hi.R, hi.G, hi.B, ansiReset,
		ansiGray, g.DomainMax, ansiReset)

	return bw.Flush()
}
