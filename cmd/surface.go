// surface.go - Ausgabeziele fuer gerenderte Heatmaps
package cmd

import (
	"io"
	"os"

	"github.com/attnviz/attnviz/heatmap"
)

// ansiSurface zeichnet jedes Grid sofort als Farbblöcke
type ansiSurface struct {
	w       io.Writer
	columns int
}

func (s *ansiSurface) Replace(g *heatmap.Grid) error {
	return heatmap.WriteANSI(s.w, g, s.columns)
}

// captureSurface merkt sich nur das letzte Grid
type captureSurface struct {
	grid *heatmap.Grid
}

func (s *captureSurface) Replace(g *heatmap.Grid) error {
	s.grid = g
	return nil
}

// writeSVGFile schreibt g als eigenstaendiges SVG nach path
func writeSVGFile(path string, g *heatmap.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := g.Scene().WriteSVG(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
