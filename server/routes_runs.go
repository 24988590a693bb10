// routes_runs.go - Zwischenspeicher fuer Runs der Browser-Ansicht
// Enthaelt: runCache, newRun, rememberRun, lookupRun

package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/attnviz/attnviz/store"
	"github.com/attnviz/attnviz/transformer"
)

// viewRunsCap begrenzt die Runs, die fuer Head-Wechsel im Speicher bleiben
const viewRunsCap = 64

var errRunNotFound = errors.New("run not found")

// runCache haelt die zuletzt gerechneten Runs, aelteste werden zuerst verdraengt
type runCache struct {
	mu    sync.Mutex
	limit int
	order []string
	runs  map[string]*store.Run
}

func newRunCache(capacity int) *runCache {
	return &runCache{limit: capacity, runs: make(map[string]*store.Run)}
}

func (rc *runCache) put(r *store.Run) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.runs[r.ID]; ok {
		rc.runs[r.ID] = r
		return
	}

	for len(rc.order) >= rc.limit {
		delete(rc.runs, rc.order[0])
		rc.order = rc.order[1:]
	}

	rc.order = append(rc.order, r.ID)
	rc.runs[r.ID] = r
}

func (rc *runCache) get(id string) (*store.Run, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	r, ok := rc.runs[id]
	return r, ok
}

func newRun(input string, vis *transformer.Visualization) store.Run {
	dims := dimensions(vis.Config)
	return store.Run{
		Input:          input,
		Tokens:         vis.Tokens,
		Weights:        vis.Weights,
		DModel:         dims.DModel,
		NHead:          dims.NHead,
		HeadDim:        dims.HeadDim,
		DimFeedforward: dims.DimFeedforward,
	}
}

// rememberRun rechnet input einmal durch und legt das Ergebnis im Cache ab.
// Head-Wechsel lesen danach nur noch die gespeicherten Gewichte.
func (s *Server) rememberRun(input string) (*store.Run, error) {
	vis, err := s.visualize(input)
	if err != nil {
		return nil, err
	}

	u, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	r := newRun(input, vis)
	r.ID = u.String()
	r.CreatedAt = time.Now().UTC()

	s.runs.put(&r)
	return &r, nil
}

// lookupRun sucht zuerst im Cache, danach in der History
func (s *Server) lookupRun(id string) (*store.Run, error) {
	if r, ok := s.runs.get(id); ok {
		return r, nil
	}

	if s.history == nil {
		return nil, fmt.Errorf("%w: %q", errRunNotFound, id)
	}

	r, err := s.history.Run(id)
	if errors.Is(err, store.ErrRunNotFound) {
		return nil, fmt.Errorf("%w: %q", errRunNotFound, id)
	} else if err != nil {
		return nil, err
	}

	s.runs.put(r)
	return r, nil
}
