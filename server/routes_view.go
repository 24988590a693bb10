// routes_view.go - Browser-Ansicht: HTML-Seite, Heatmap- und Diagramm-SVG
// Enthaelt: ViewHandler, HeatmapHandler, DiagramHandler

package server

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/diagram"
	"github.com/attnviz/attnviz/heatmap"
	"github.com/attnviz/attnviz/scene"
	"github.com/attnviz/attnviz/store"
	"github.com/attnviz/attnviz/viewer"
)

const svgContentType = "image/svg+xml"

//go:embed templates/view.html
var templatesFS embed.FS

var viewTemplate = template.Must(template.ParseFS(templatesFS, "templates/view.html"))

type viewPage struct {
	Input      string
	Run        string
	Head       attention.Head
	Heads      []attention.Head
	Tokens     []string
	Dimensions api.ModelDimensions
	Heatmap    template.HTML
	Diagram    template.HTML
	Error      string
}

// headedView ist ein Run mit ausgewaehltem Head
type headedView struct {
	run   *store.Run
	heads int
	head  attention.Head
	grid  *heatmap.Grid
}

func (v *headedView) dimensions() api.ModelDimensions {
	return api.ModelDimensions{
		DModel:         v.run.DModel,
		NHead:          v.run.NHead,
		HeadDim:        v.run.HeadDim,
		DimFeedforward: v.run.DimFeedforward,
	}
}

// render zeichnet den Head aus dem 1-basierten Query-Wert. Ist runID gesetzt,
// werden nur die gespeicherten Gewichte neu geschnitten, sonst laeuft input
// einmal durch das Modell. Werte ausserhalb des Bereichs werden begrenzt.
func (s *Server) render(input, runID, head string) (*headedView, error) {
	var (
		run *store.Run
		err error
	)
	if runID != "" {
		run, err = s.lookupRun(runID)
	} else {
		run, err = s.rememberRun(input)
	}
	if err != nil {
		return nil, err
	}

	v := &headedView{run: run, heads: run.Weights.Heads()}

	if head != "" {
		h, err := attention.ParseHead(head, v.heads)
		if err != nil {
			return nil, err
		}
		v.head = h
	}

	m, err := attention.Slice(run.Weights, v.head, run.Tokens)
	if err != nil {
		return nil, err
	}

	v.grid, err = heatmap.Render(m, run.Tokens, v.head)
	if err != nil {
		return nil, err
	}

	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errRunNotFound):
		return http.StatusNotFound
	// ParseHead umhuellt die strconv-Fehler
	case errors.Is(err, errEmptyInput), errors.Is(err, strconv.ErrSyntax), errors.Is(err, strconv.ErrRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func svgBytes(sc *scene.Scene) ([]byte, error) {
	var b bytes.Buffer
	if err := sc.WriteSVG(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// inlineSVG entfernt die XML-Deklaration fuer die Einbettung in HTML
func inlineSVG(sc *scene.Scene) (template.HTML, error) {
	b, err := svgBytes(sc)
	if err != nil {
		return "", err
	}
	return template.HTML(bytes.TrimPrefix(b, []byte(xml.Header))), nil //nolint:gosec
}

func diagramScene(dims api.ModelDimensions) *scene.Scene {
	return diagram.Build(diagram.Dimensions{
		DModel:         dims.DModel,
		NHead:          dims.NHead,
		HeadDim:        dims.HeadDim,
		DimFeedforward: dims.DimFeedforward,
	})
}

// ViewHandler liefert die HTML-Seite mit Formular, Head-Auswahl und Heatmap.
// Die Head-Auswahl traegt die Run-ID, damit ein Wechsel nur neu zeichnet.
func (s *Server) ViewHandler(c *gin.Context) {
	input, ok := c.GetQuery("input")
	if !ok {
		input = viewer.DefaultInput
	}

	page := viewPage{Input: input, Dimensions: dimensions(s.model.Config())}
	status := http.StatusOK

	v, err := s.render(input, c.Query("run"), c.Query("head"))
	if err != nil {
		status = statusFor(err)
		page.Error = err.Error()
	} else {
		page.Input = v.run.Input
		page.Run = v.run.ID
		page.Head = v.head
		page.Heads = attention.Heads(v.heads)
		page.Tokens = v.run.Tokens
		page.Dimensions = v.dimensions()

		if page.Heatmap, err = inlineSVG(v.grid.Scene()); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	if page.Diagram, err = inlineSVG(diagramScene(page.Dimensions)); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var b bytes.Buffer
	if err := viewTemplate.Execute(&b, page); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(status, "text/html; charset=utf-8", b.Bytes())
}

// HeatmapHandler liefert die Heatmap eines Heads als SVG
func (s *Server) HeatmapHandler(c *gin.Context) {
	v, err := s.render(c.Query("input"), c.Query("run"), c.Query("head"))
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	b, err := svgBytes(v.grid.Scene())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, svgContentType, b)
}

// DiagramHandler liefert das Architektur-Diagramm des geladenen Modells
func (s *Server) DiagramHandler(c *gin.Context) {
	b, err := svgBytes(diagramScene(dimensions(s.model.Config())))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, svgContentType, b)
}
