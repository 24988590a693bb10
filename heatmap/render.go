// Package heatmap turns a single-head attention matrix into a fully
// described, labeled grid of colored cells.
//
// render.go - Render: Domain, Farbskala, Layout, Zellen, Labels, Titel
package heatmap

import (
	"fmt"
	"image/color"

	"github.com/attnviz/attnviz/attention"
)

// Margin reserviert Platz fuer Achsenbeschriftungen und Titel
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout constants of the drawing area.
const (
	Width   = 500.0
	Height  = 500.0
	Padding = 0.05
)

// DefaultMargin leaves room for rotated column labels and row labels.
var DefaultMargin = Margin{Top: 20, Right: 20, Bottom: 90, Left: 90}

// Axis captions.
const (
	ColumnCaption = "Source Tokens (Keys)"
	RowCaption    = "Target Tokens (Queries)"
)

// Cell is one (query, key) square of the grid. Coordinates are relative to
// the inner drawing area.
type Cell struct {
	Row, Col      int
	X, Y          float64
	Width, Height float64
	Weight        float64
	Fill          color.RGBA
	Tooltip       string
}

// Label is a token label or caption. Rotate is in degrees around (X, Y).
type Label struct {
	Text   string
	X, Y   float64
	Rotate float64
}

// Grid is the complete visual description of one heatmap. It is a plain
// value; rendering the same inputs twice yields equal grids.
type Grid struct {
	Width, Height float64
	Margin        Margin
	Head          attention.Head
	DomainMax     float64

	Cells        []Cell
	ColumnLabels []Label
	RowLabels    []Label

	ColumnCaption Label
	RowCaption    Label
	Title         Label
}

// Empty reports whether the grid has nothing to draw.
func (g *Grid) Empty() bool {
	return g == nil || len(g.Cells) == 0
}

// Cell returns the cell at row i, column j.
func (g *Grid) Cell(i, j int) Cell {
	return g.Cells[i*len(g.ColumnLabels)+j]
}

// Tooltip formats the hover text of a cell.
func Tooltip(source, target string, weight float64) string {
	return fmt.Sprintf("From: %s, To: %s, Weight: %.4f", source, target, weight)
}

// Title formats the heading for a head.
func Title(head attention.Head) string {
	return "Attention Weights - Head " + head.String()
}

// Render draws m with tokens labeling both axes. An empty token list or an
// empty matrix yields an empty grid. A matrix that does not match the token
// list fails with attention.ErrShapeMismatch and nothing is drawn.
func Render(m attention.Matrix, tokens []string, head attention.Head) (*Grid, error) {
	inner := struct{ w, h float64 }{
		w: Width - DefaultMargin.Left - DefaultMargin.Right,
		h: Height - DefaultMargin.Top - DefaultMargin.Bottom,
	}

	g := &Grid{
		Width:     Width,
		Height:    Height,
		Margin:    DefaultMargin,
		Head:      head,
		DomainMax: 1,
	}

	n := len(tokens)
	if n == 0 || m.Len() == 0 {
		return g, nil
	}

	if m.Len() != n {
		return nil, fmt.Errorf("%w: %d tokens, %dx%d matrix", attention.ErrShapeMismatch, n, m.Len(), m.Len())
	}

	scale := NewScale(m.Max())
	g.DomainMax = scale.Domain()

	x := newBand(n, inner.w, Padding)
	y := newBand(n, inner.h, Padding)

	g.Cells = make([]Cell, 0, n*n)
	for i := range n {
		for j := range n {
			w := m.At(i, j)
			g.Cells = append(g.Cells, Cell{
				Row:     i,
				Col:     j,
				X:       x.pos(j),
				Y:       y.pos(i),
				Width:   x.width,
				Height:  y.width,
				Weight:  w,
				Fill:    scale.Color(w),
				Tooltip: Tooltip(tokens[j], tokens[i], w),
			})
		}
	}

	g.ColumnLabels = make([]Label, n)
	g.RowLabels = make([]Label, n)
	for i, tok := range tokens {
		g.ColumnLabels[i] = Label{Text: tok, X: x.center(i), Y: inner.h + 10, Rotate: -45}
		g.RowLabels[i] = Label{Text: tok, X: -10, Y: y.center(i)}
	}

	g.ColumnCaption = Label{Text: ColumnCaption, X: inner.w / 2, Y: inner.h + DefaultMargin.Bottom - 10}
	g.RowCaption = Label{Text: RowCaption, X: -DefaultMargin.Left + 20, Y: inner.h / 2, Rotate: -90}
	g.Title = Label{Text: Title(head), X: inner.w / 2, Y: -DefaultMargin.Top / 2}

	return g, nil
}
