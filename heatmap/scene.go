// scene.go - Uebersetzt ein Grid in generische Zeichen-Primitive
package heatmap

import (
	"github.com/attnviz/attnviz/scene"
)

// Scene converts the grid into drawing primitives. An empty grid yields a
// blank scene of the same size, so surfaces still clear their contents.
func (g *Grid) Scene() *scene.Scene {
	s := &scene.Scene{
		Width:      g.Width,
		Height:     g.Height,
		TranslateX: g.Margin.Left,
		TranslateY: g.Margin.Top,
	}

	if g.Empty() {
		return s
	}

	s.Rects = make([]scene.Rect, 0, len(g.Cells))
	for _, c := range g.Cells {
		s.Rects = append(s.Rects, scene.Rect{
			X:           c.X,
			Y:           c.Y,
			Width:       c.Width,
			Height:      c.Height,
			Fill:        Hex(c.Fill),
			Stroke:      "#fff",
			StrokeWidth: 0.5,
			Title:       c.Tooltip,
		})
	}

	for _, l := range g.ColumnLabels {
		s.Texts = append(s.Texts, scene.Text{X: l.X, Y: l.Y, DY: ".35em", Content: l.Text, Anchor: scene.AnchorEnd, FontSize: 12, Rotate: l.Rotate})
	}

	for _, l := range g.RowLabels {
		s.Texts = append(s.Texts, scene.Text{X: l.X, Y: l.Y, DY: ".35em", Content: l.Text, Anchor: scene.AnchorEnd, FontSize: 12})
	}

	s.Texts = append(s.Texts,
		scene.Text{X: g.ColumnCaption.X, Y: g.ColumnCaption.Y, Content: g.ColumnCaption.Text, Anchor: scene.AnchorMiddle, FontSize: 14, Bold: true},
		scene.Text{X: g.RowCaption.X, Y: g.RowCaption.Y, Content: g.RowCaption.Text, Anchor: scene.AnchorMiddle, FontSize: 14, Bold: true, Rotate: g.RowCaption.Rotate},
		scene.Text{X: g.Title.X, Y: g.Title.Y, Content: g.Title.Text, Anchor: scene.AnchorMiddle, FontSize: 16, Bold: true},
	)

	return s
}
