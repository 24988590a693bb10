package scene

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSVG(t *testing.T) {
	s := &Scene{
		Width:      500,
		Height:     500,
		TranslateX: 90,
		TranslateY: 20,
		Rects: []Rect{
			{X: 1.5, Y: 2, Width: 10, Height: 10, Fill: "#f7fbff", Stroke: "#fff", StrokeWidth: 0.5, Title: "From: <a>, To: b&c, Weight: 0.1000"},
		},
		Texts: []Text{
			{X: 5, Y: 10, DY: ".35em", Content: "cat", Anchor: AnchorEnd, FontSize: 12, Rotate: -45},
			{X: 205, Y: -10, Content: "Attention Weights - Head 1", Anchor: AnchorMiddle, FontSize: 16, Bold: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, s.WriteSVG(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, out, `viewBox="0 0 500 500"`)
	assert.Contains(t, out, `transform="translate(90,20)"`)
	assert.Contains(t, out, `<title>From: &lt;a&gt;, To: b&amp;c, Weight: 0.1000</title>`)
	assert.Contains(t, out, `transform="rotate(-45, 5, 10)"`)
	assert.Contains(t, out, `font-weight="bold"`)
	assert.NotContains(t, out, "<defs>")

	// Das Dokument muss wieder parsebar sein
	var doc struct {
		Group struct {
			Rects []struct {
				Title string `xml:"title"`
			} `xml:"rect"`
			Texts []string `xml:"text"`
		} `xml:"g"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Group.Rects, 1)
	assert.Equal(t, "From: <a>, To: b&c, Weight: 0.1000", doc.Group.Rects[0].Title)
	assert.Equal(t, []string{"cat", "Attention Weights - Head 1"}, doc.Group.Texts)
}

func TestWriteSVGArrows(t *testing.T) {
	s := &Scene{
		Width:      100,
		Height:     100,
		Background: "#ffffff",
		Lines: []Line{
			{X1: 0, Y1: 0, X2: 0, Y2: 50, Stroke: "#6b7280", Arrow: true},
			{X1: 10, Y1: 0, X2: 10, Y2: 50, Stroke: "#6b7280", Dashed: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, s.WriteSVG(&buf))
	out := buf.String()

	assert.Contains(t, out, `<marker id="arrow"`)
	assert.Contains(t, out, `marker-end="url(#arrow)"`)
	assert.Contains(t, out, `stroke-dasharray="4 3"`)
	assert.Contains(t, out, `fill="#ffffff"`)
	assert.NotContains(t, out, "translate(")
}

func TestEmpty(t *testing.T) {
	var nilScene *Scene
	assert.True(t, nilScene.Empty())
	assert.True(t, (&Scene{Width: 10, Height: 10}).Empty())
	assert.False(t, (&Scene{Texts: []Text{{Content: "x"}}}).Empty())
}
