// database_runs.go - Run CRUD Operationen
// Enthält: saveRun, getRuns, getRun

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// saveRun speichert einen Run, Tokens und Gewichte als JSON
func (db *database) saveRun(r Run) error {
	tokens, err := json.Marshal(r.Tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	weights, err := json.Marshal(r.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO runs (id, input, tokens, weights, d_model, nhead, head_dim, dim_feedforward, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Input, string(tokens), string(weights), r.DModel, r.NHead, r.HeadDim, r.DimFeedforward, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// getRuns gibt die neuesten Runs zurück, ohne Gewichte
func (db *database) getRuns(limit int) ([]Summary, error) {
	rows, err := db.conn.Query(`
		SELECT id, input, json_array_length(tokens), nhead, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Input, &s.Tokens, &s.Heads, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// getRun lädt einen einzelnen Run inklusive Gewichte
func (db *database) getRun(id string) (*Run, error) {
	var r Run
	var tokens, weights string

	err := db.conn.QueryRow(`
		SELECT id, input, tokens, weights, d_model, nhead, head_dim, dim_feedforward, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Input, &tokens, &weights, &r.DModel, &r.NHead, &r.HeadDim, &r.DimFeedforward, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if err := json.Unmarshal([]byte(tokens), &r.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshal tokens: %w", err)
	}

	if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
		return nil, fmt.Errorf("unmarshal weights: %w", err)
	}

	return &r, nil
}
