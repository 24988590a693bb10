// Package diagram draws the encoder layer annotated with the model's
// dimensions.
package diagram

import (
	"fmt"

	"github.com/attnviz/attnviz/scene"
)

// Dimensions are the sizes shown on the diagram.
type Dimensions struct {
	DModel         int
	NHead          int
	HeadDim        int
	DimFeedforward int
}

// Farben der einzelnen Bloecke
const (
	colorEmbedding   = "#dbeafe"
	colorAttention   = "#fefce8"
	colorProjection  = "#fef9c3"
	colorSplit       = "#fef08a"
	colorNorm        = "#dcfce7"
	colorFeedForward = "#f3e8ff"
	colorOutput      = "#fee2e2"
	colorBorder      = "#9ca3af"
	colorArrow       = "#6b7280"
	colorText        = "#111827"
)

const (
	width  = 360.0
	height = 720.0
	center = width / 2
)

type builder struct {
	s *scene.Scene
}

func (b *builder) box(x, y, w, h float64, fill, label string, size float64) {
	b.s.Rects = append(b.s.Rects, scene.Rect{X: x, Y: y, Width: w, Height: h, Fill: fill, Stroke: colorBorder, StrokeWidth: 1, Radius: 4})
	if label != "" {
		b.text(x+w/2, y+h/2, label, size, false)
	}
}

func (b *builder) text(x, y float64, s string, size float64, bold bool) {
	b.s.Texts = append(b.s.Texts, scene.Text{X: x, Y: y, DY: ".35em", Content: s, Anchor: scene.AnchorMiddle, FontSize: size, Bold: bold, Fill: colorText})
}

func (b *builder) arrow(x1, y1, x2, y2 float64) {
	b.s.Lines = append(b.s.Lines, scene.Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Stroke: colorArrow, StrokeWidth: 1.5, Arrow: true})
}

func (b *builder) residual(x, top, bottom float64) {
	b.s.Lines = append(b.s.Lines,
		scene.Line{X1: center + 70, Y1: top, X2: x, Y2: top, Stroke: colorArrow, StrokeWidth: 1, Dashed: true},
		scene.Line{X1: x, Y1: top, X2: x, Y2: bottom, Stroke: colorArrow, StrokeWidth: 1, Dashed: true},
		scene.Line{X1: x, Y1: bottom, X2: center + 80, Y2: bottom, Stroke: colorArrow, StrokeWidth: 1, Dashed: true, Arrow: true},
	)
	b.text(x+10, (top+bottom)/2, "+", 14, true)
}

// Build returns the architecture diagram for dims.
func Build(dims Dimensions) *scene.Scene {
	b := &builder{s: &scene.Scene{Width: width, Height: height, Background: "#ffffff"}}

	b.text(center, 18, "Transformer Architecture", 16, true)

	// Eingabe
	b.box(center-80, 40, 160, 32, colorEmbedding, "Input Embedding", 12)
	b.arrow(center, 72, center, 96)

	// Multi-Head Attention
	b.box(20, 96, width-40, 250, colorAttention, "", 0)
	b.text(center, 114, "Multi-Head Attention", 13, true)

	for i, name := range []string{"Q", "K", "V"} {
		x := 50 + float64(i)*95
		b.box(x, 132, 70, 28, colorProjection, fmt.Sprintf("%s (%d)", name, dims.DModel), 11)
		b.arrow(x+35, 160, x+35, 180)
		b.box(x, 180, 70, 28, colorSplit, fmt.Sprintf("Split (%d)", dims.NHead), 11)
		b.arrow(x+35, 208, center, 226)
	}

	b.box(center-110, 226, 220, 28, colorProjection, fmt.Sprintf("Scaled Dot-Product ÷ √%d", dims.HeadDim), 11)
	b.arrow(center, 254, center, 266)
	b.box(center-60, 266, 120, 26, colorSplit, "Softmax", 11)
	b.arrow(center, 292, center, 304)
	b.box(center-110, 304, 220, 28, colorProjection, fmt.Sprintf("Concat %d × %d → Linear (%d)", dims.NHead, dims.HeadDim, dims.DModel), 11)

	b.arrow(center, 346, center, 370)

	// Add & Norm
	b.box(center-80, 370, 160, 30, colorNorm, "Add & Norm", 12)
	b.residual(width-10, 56, 385)
	b.arrow(center, 400, center, 424)

	// Feed-Forward
	b.box(40, 424, width-80, 130, colorFeedForward, "", 0)
	b.text(center, 442, "Feed-Forward Network", 13, true)
	b.box(center-110, 460, 220, 26, colorProjection, fmt.Sprintf("Linear %d → %d", dims.DModel, dims.DimFeedforward), 11)
	b.arrow(center, 486, center, 496)
	b.box(center-50, 496, 100, 20, colorSplit, "ReLU", 11)
	b.arrow(center, 516, center, 524)
	b.box(center-110, 524, 220, 26, colorProjection, fmt.Sprintf("Linear %d → %d", dims.DimFeedforward, dims.DModel), 11)

	b.arrow(center, 554, center, 578)

	b.box(center-80, 578, 160, 30, colorNorm, "Add & Norm", 12)
	b.residual(width-10, 412, 593)
	b.arrow(center, 608, center, 632)

	b.box(center-80, 632, 160, 32, colorOutput, "Output", 12)

	b.text(center, 690, fmt.Sprintf("d_model=%d  heads=%d  head_dim=%d  d_ff=%d", dims.DModel, dims.NHead, dims.HeadDim, dims.DimFeedforward), 11, false)

	return b.s
}
