// Package api - API-Methoden des Clients.
// Dieses Modul enthaelt Health, Process, History und Version.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		return err
	}
	return nil
}

// Health probes /api/health and fails unless the backend reports "ok".
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("backend status %q", resp.Status)
	}
	return nil
}

// Process tokenizes req.Input on the backend and returns the attention
// weights of every head.
func (c *Client) Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/api/process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists the most recent runs, newest first. limit <= 0 uses the
// server default.
func (c *Client) History(ctx context.Context, limit int) (*HistoryResponse, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var resp HistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Run fetches one stored run including its weights.
func (c *Client) Run(ctx context.Context, id string) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.do(ctx, http.MethodGet, "/api/history/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version returns the version of the attnviz backend.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version struct {
		Version string `json:"version"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &version); err != nil {
		return "", err
	}

	return version.Version, nil
}
