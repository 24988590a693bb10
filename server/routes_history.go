// routes_history.go - Handler fuer gespeicherte Runs
// Enthaelt: HistoryHandler, RunHandler

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/store"
)

// HistoryHandler listet die letzten Runs, neueste zuerst
func (s *Server) HistoryHandler(c *gin.Context) {
	limit := store.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", v)})
			return
		}
		limit = n
	}

	resp := api.HistoryResponse{Runs: []api.HistoryEntry{}}
	if s.history == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	runs, err := s.history.Runs(limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, r := range runs {
		resp.Runs = append(resp.Runs, api.HistoryEntry{
			ID:        r.ID,
			Input:     r.Input,
			Tokens:    r.Tokens,
			Heads:     r.Heads,
			CreatedAt: r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// RunHandler liefert einen gespeicherten Run im Format von /api/process
func (s *Server) RunHandler(c *gin.Context) {
	id := c.Param("id")
	if s.history == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %q not found", id)})
		return
	}

	run, err := s.history.Run(id)
	if errors.Is(err, store.ErrRunNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %q not found", id)})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.ProcessResponse{
		ID:               run.ID,
		Input:            run.Input,
		InputTokens:      run.Tokens,
		AttentionWeights: run.Weights,
		ModelDimensions: api.ModelDimensions{
			DModel:         run.DModel,
			NHead:          run.NHead,
			HeadDim:        run.HeadDim,
			DimFeedforward: run.DimFeedforward,
		},
		CreatedAt: run.CreatedAt,
	})
}
