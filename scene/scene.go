// Package scene describes drawings as immutable lists of positioned
// primitives. Drawing surfaces are handed a Scene and replace whatever
// they showed before.
package scene

// Anchor is the horizontal alignment of a Text.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Rect ist ein gefuelltes Rechteck mit optionalem Tooltip
type Rect struct {
	X, Y          float64
	Width, Height float64
	Fill          string
	Stroke        string
	StrokeWidth   float64
	Radius        float64
	Title         string
}

// Text ist ein einzeiliges Label. Rotate dreht in Grad um (X, Y)
type Text struct {
	X, Y     float64
	DY       string
	Content  string
	Anchor   Anchor
	FontSize float64
	Bold     bool
	Fill     string
	Rotate   float64
}

// Line ist eine Verbindungslinie, optional mit Pfeilspitze am Ende
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
	Arrow          bool
	Dashed         bool
}

// Scene is a complete drawing. Translate offsets every primitive, which
// lets callers lay out content inside margins.
type Scene struct {
	Width, Height          float64
	TranslateX, TranslateY float64
	Background             string

	Rects []Rect
	Lines []Line
	Texts []Text
}

// Empty reports whether the scene draws nothing.
func (s *Scene) Empty() bool {
	return s == nil || len(s.Rects)+len(s.Lines)+len(s.Texts) == 0
}
