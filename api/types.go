// types.go - API-Typen fuer Health, Process und History
// Enthaelt: StatusError, ProcessRequest/-Response, ModelDimensions, HistoryEntry
package api

import (
	"fmt"
	"time"

	"github.com/attnviz/attnviz/attention"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the attnviz server logs for details"
	}
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Input string `json:"input"`
}

// ModelDimensions beschreibt die Architektur fuer das Diagramm
type ModelDimensions struct {
	DModel         int `json:"d_model"`
	NHead          int `json:"nhead"`
	HeadDim        int `json:"head_dim"`
	DimFeedforward int `json:"dim_feedforward"`
}

// DefaultModelDimensions are shown before the first response arrives.
func DefaultModelDimensions() ModelDimensions {
	return ModelDimensions{DModel: 64, NHead: 4, HeadDim: 16, DimFeedforward: 128}
}

// ProcessResponse carries tokens, the attention tensor shaped
// [batch][head][query][key] and the dimensions of the model that made it.
type ProcessResponse struct {
	ID               string           `json:"id,omitempty"`
	Input            string           `json:"input,omitempty"`
	InputTokens      []string         `json:"input_tokens"`
	AttentionWeights attention.Tensor `json:"attention_weights"`
	ModelDimensions  ModelDimensions  `json:"model_dimensions"`
	CreatedAt        time.Time        `json:"created_at,omitzero"`
}

// HistoryEntry summarises a stored run.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Tokens    int       `json:"tokens"`
	Heads     int       `json:"heads"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Runs []HistoryEntry `json:"runs"`
}
