// routes_process.go - Health- und Process-Handler
// Enthaelt: HealthHandler, ProcessHandler, visualize, dimensions

package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/transformer"
)

var errEmptyInput = errors.New("input is empty")

// HealthHandler meldet, dass das Modell geladen ist
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// ProcessHandler tokenisiert den Input, laesst ihn durch den Encoder laufen
// und liefert die Attention-Gewichte zurueck
func (s *Server) ProcessHandler(c *gin.Context) {
	var req api.ProcessRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vis, err := s.visualize(req.Input)
	if errors.Is(err, errEmptyInput) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		slog.Error("process failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := api.ProcessResponse{
		Input:            req.Input,
		InputTokens:      vis.Tokens,
		AttentionWeights: vis.Weights,
		ModelDimensions:  dimensions(vis.Config),
	}

	if s.history != nil {
		run, err := s.history.SaveRun(newRun(req.Input, vis))
		if err != nil {
			// die Antwort ist trotzdem gueltig
			slog.Warn("failed to record run", "error", err)
		} else {
			resp.ID = run.ID
			resp.CreatedAt = run.CreatedAt
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) visualize(input string) (*transformer.Visualization, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errEmptyInput
	}

	tokens := transformer.Tokenize(input)
	slog.Debug("processing input", "tokens", len(tokens))

	return s.model.Visualize(tokens)
}

func dimensions(cfg transformer.Config) api.ModelDimensions {
	return api.ModelDimensions{
		DModel:         cfg.DModel,
		NHead:          cfg.NHead,
		HeadDim:        cfg.HeadDim(),
		DimFeedforward: cfg.DimFeedforward,
	}
}
