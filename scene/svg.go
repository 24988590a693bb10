// svg.go - Kodiert eine Scene als eigenstaendiges SVG-Dokument
package scene

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

const svgNamespace = "http://www.w3.org/2000/svg"

type svgDocument struct {
	XMLName xml.Name `xml:"svg"`
	Xmlns   string   `xml:"xmlns,attr"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	ViewBox string   `xml:"viewBox,attr"`
	Defs    *svgDefs `xml:"defs,omitempty"`
	Back    *svgRect `xml:"rect,omitempty"`
	Group   svgGroup `xml:"g"`
}

type svgDefs struct {
	Marker svgMarker `xml:"marker"`
}

type svgMarker struct {
	ID           string  `xml:"id,attr"`
	MarkerWidth  string  `xml:"markerWidth,attr"`
	MarkerHeight string  `xml:"markerHeight,attr"`
	RefX         string  `xml:"refX,attr"`
	RefY         string  `xml:"refY,attr"`
	Orient       string  `xml:"orient,attr"`
	Path         svgPath `xml:"path"`
}

type svgPath struct {
	D    string `xml:"d,attr"`
	Fill string `xml:"fill,attr"`
}

type svgGroup struct {
	Transform string    `xml:"transform,attr,omitempty"`
	Rects     []svgRect `xml:"rect"`
	Lines     []svgLine `xml:"line"`
	Texts     []svgText `xml:"text"`
}

type svgRect struct {
	X           string `xml:"x,attr"`
	Y           string `xml:"y,attr"`
	Width       string `xml:"width,attr"`
	Height      string `xml:"height,attr"`
	RX          string `xml:"rx,attr,omitempty"`
	Fill        string `xml:"fill,attr"`
	Stroke      string `xml:"stroke,attr,omitempty"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Title       string `xml:"title,omitempty"`
}

type svgLine struct {
	X1          string `xml:"x1,attr"`
	Y1          string `xml:"y1,attr"`
	X2          string `xml:"x2,attr"`
	Y2          string `xml:"y2,attr"`
	Stroke      string `xml:"stroke,attr"`
	StrokeWidth string `xml:"stroke-width,attr,omitempty"`
	Dash        string `xml:"stroke-dasharray,attr,omitempty"`
	MarkerEnd   string `xml:"marker-end,attr,omitempty"`
}

type svgText struct {
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	DY         string `xml:"dy,attr,omitempty"`
	Transform  string `xml:"transform,attr,omitempty"`
	Anchor     string `xml:"text-anchor,attr,omitempty"`
	FontSize   string `xml:"font-size,attr,omitempty"`
	FontWeight string `xml:"font-weight,attr,omitempty"`
	Fill       string `xml:"fill,attr,omitempty"`
	Content    string `xml:",chardata"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optNum(f float64) string {
	if f == 0 {
		return ""
	}
	return num(f)
}

// WriteSVG writes s as a standalone SVG document.
func (s *Scene) WriteSVG(w io.Writer) error {
	doc := svgDocument{
		Xmlns:   svgNamespace,
		Width:   num(s.Width),
		Height:  num(s.Height),
		ViewBox: fmt.Sprintf("0 0 %s %s", num(s.Width), num(s.Height)),
	}

	if s.Background != "" {
		doc.Back = &svgRect{X: "0", Y: "0", Width: "100%", Height: "100%", Fill: s.Background}
	}

	if s.TranslateX != 0 || s.TranslateY != 0 {
		doc.Group.Transform = fmt.Sprintf("translate(%s,%s)", num(s.TranslateX), num(s.TranslateY))
	}

	arrows := false
	for _, l := range s.Lines {
		line := svgLine{
			X1:          num(l.X1),
			Y1:          num(l.Y1),
			X2:          num(l.X2),
			Y2:          num(l.Y2),
			Stroke:      l.Stroke,
			StrokeWidth: optNum(l.StrokeWidth),
		}
		if l.Dashed {
			line.Dash = "4 3"
		}
		if l.Arrow {
			line.MarkerEnd = "url(#arrow)"
			arrows = true
		}
		doc.Group.Lines = append(doc.Group.Lines, line)
	}

	if arrows {
		doc.Defs = &svgDefs{Marker: svgMarker{
			ID:           "arrow",
			MarkerWidth:  "8",
			MarkerHeight: "8",
			RefX:         "7",
			RefY:         "4",
			Orient:       "auto",
			Path:         svgPath{D: "M0,0 L8,4 L0,8 z", Fill: "#6b7280"},
		}}
	}

	for _, r := range s.Rects {
		doc.Group.Rects = append(doc.Group.Rects, svgRect{
			X:           num(r.X),
			Y:           num(r.Y),
			Width:       num(r.Width),
			Height:      num(r.Height),
			RX:          optNum(r.Radius),
			Fill:        r.Fill,
			Stroke:      r.Stroke,
			StrokeWidth: optNum(r.StrokeWidth),
			Title:       r.Title,
		})
	}

	for _, t := range s.Texts {
		text := svgText{
			X:        num(t.X),
			Y:        num(t.Y),
			DY:       t.DY,
			Anchor:   string(t.Anchor),
			FontSize: optNum(t.FontSize),
			Fill:     t.Fill,
			Content:  t.Content,
		}
		if t.Bold {
			text.FontWeight = "bold"
		}
		if t.Rotate != 0 {
			text.Transform = fmt.Sprintf("rotate(%s, %s, %s)", num(t.Rotate), num(t.X), num(t.Y))
		}
		doc.Group.Texts = append(doc.Group.Texts, text)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	return enc.Close()
}
