// Package viewer holds the state behind an attention view and turns events
// (input submitted, head selected, health probed) into redraws.
//
// session.go - Zustand, Events und Redraw
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/attention"
	"github.com/attnviz/attnviz/heatmap"
)

// DefaultInput is the text shown before anything was submitted.
const DefaultInput = "The cat sat on the mat"

var (
	ErrEmptyInput         = errors.New("input is empty")
	ErrBackendUnavailable = errors.New("backend is not running")

	// ErrSuperseded is returned by Submit when a newer submission finished
	// first; its response is dropped.
	ErrSuperseded = errors.New("response superseded by a newer request")
)

// Backend is the part of api.Client a session needs.
type Backend interface {
	Health(ctx context.Context) error
	Process(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error)
}

// Surface shows a rendered grid. Replace is called with the session lock
// held and must not call back into the session.
type Surface interface {
	Replace(g *heatmap.Grid) error
}

// Status of the backend as last observed
type Status int

const (
	StatusChecking Status = iota
	StatusRunning
	StatusNotRunning
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusRunning:
		return "running"
	case StatusNotRunning:
		return "not running"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is a snapshot of a session.
type State struct {
	Status     Status
	Input      string
	Tokens     []string
	Weights    attention.Tensor
	Dimensions api.ModelDimensions
	Head       attention.Head

	// Error is the message of the last failed event, empty after a
	// successful redraw.
	Error string

	// Grid is the last grid handed to the surface.
	Grid *heatmap.Grid
}

// Session serialises events for one view.
type Session struct {
	backend Backend
	surface Surface

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewSession(backend Backend, surface Surface) *Session {
	return &Session{
		backend: backend,
		surface: surface,
		state: State{
			Status:     StatusChecking,
			Input:      DefaultInput,
			Dimensions: api.DefaultModelDimensions(),
		},
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Heads is the number of selectable heads: from the tensor once there is
// one, from the model dimensions before.
func (st State) Heads() int {
	if n := st.Weights.Heads(); n > 0 {
		return n
	}
	return st.Dimensions.NHead
}

// Submit sends text to the backend and redraws with the response. The
// backend call runs without the lock; if another Submit started meanwhile
// the older response is dropped with ErrSuperseded.
func (s *Session) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.state.Status != StatusRunning {
		s.mu.Unlock()
		return ErrBackendUnavailable
	}
	s.seq++
	seq := s.seq
	s.state.Input = text
	s.mu.Unlock()

	resp, err := s.backend.Process(ctx, &api.ProcessRequest{Input: text})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		slog.Debug("dropping superseded response", "seq", seq, "latest", s.seq)
		return ErrSuperseded
	}

	if err != nil {
		s.state.Error = err.Error()
		return fmt.Errorf("process: %w", err)
	}

	next := s.state
	next.Tokens = resp.InputTokens
	next.Weights = resp.AttentionWeights
	next.Dimensions = resp.ModelDimensions
	next.Head = next.Head.Clamp(next.Heads())

	return s.commit(next)
}

// SelectHead switches the displayed head. h is clamped to the available
// heads.
func (s *Session) SelectHead(h attention.Head) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Head = h.Clamp(next.Heads())

	// noch keine Gewichte, nichts zu zeichnen
	if next.Weights == nil {
		s.state = next
		return nil
	}

	return s.commit(next)
}

// CheckHealth probes the backend once and records the result.
func (s *Session) CheckHealth(ctx context.Context) Status {
	err := s.backend.Health(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Status
	if err != nil {
		s.state.Status = StatusNotRunning
	} else {
		s.state.Status = StatusRunning
	}

	if prev != s.state.Status {
		slog.Info("backend status changed", "status", s.state.Status, "error", err)
	}

	return s.state.Status
}

// commit zeichnet next und uebernimmt ihn erst, wenn Slice, Render und die
// Oberflaeche erfolgreich waren. Sonst bleibt der letzte gueltige Zustand
// stehen und nur Error wird gesetzt.
func (s *Session) commit(next State) error {
	m, err := attention.Slice(next.Weights, next.Head, next.Tokens)
	if err != nil {
		s.state.Error = err.Error()
		return err
	}

	grid, err := heatmap.Render(m, next.Tokens, next.Head)
	if err != nil {
		s.state.Error = err.Error()
		return err
	}

	if err := s.surface.Replace(grid); err != nil {
		s.state.Error = err.Error()
		return fmt.Errorf("replace surface: %w", err)
	}

	next.Grid = grid
	next.Error = ""
	s.state = next
	return nil
}
