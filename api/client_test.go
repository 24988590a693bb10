package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attnviz/attnviz/attention"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	base, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return NewClient(base, ts.Client())
}

func TestClientFromEnvironment(t *testing.T) {
	t.Setenv("ATTNVIZ_HOST", "10.0.0.1:8080")
	c, err := ClientFromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8080", c.base.String())
}

func TestHealth(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		ok     bool
	}{
		"ok":          {http.StatusOK, `{"status":"ok"}`, true},
		"degraded":    {http.StatusOK, `{"status":"starting"}`, false},
		"server down": {http.StatusInternalServerError, `{"error":"boom"}`, false},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/health", r.URL.Path)
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.Health(t.Context())
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHealthUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base, _ := url.Parse(ts.URL)
	ts.Close()

	err := NewClient(base, http.DefaultClient).Health(t.Context())
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "attnviz/")

		var req ProcessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "The cat", req.Input)

		json.NewEncoder(w).Encode(ProcessResponse{
			ID:               "run-1",
			InputTokens:      []string{"The", "cat"},
			AttentionWeights: attention.Tensor{{{{0.6, 0.4}, {0.3, 0.7}}}},
			ModelDimensions:  DefaultModelDimensions(),
		})
	})

	resp, err := c.Process(t.Context(), &ProcessRequest{Input: "The cat"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, []string{"The", "cat"}, resp.InputTokens)
	assert.Equal(t, 1, resp.AttentionWeights.Heads())
	assert.Equal(t, ModelDimensions{DModel: 64, NHead: 4, HeadDim: 16, DimFeedforward: 128}, resp.ModelDimensions)
}

func TestProcessWireFormat(t *testing.T) {
	body := `{"input_tokens":["a"],"attention_weights":[[[[1]]]],"model_dimensions":{"d_model":8,"nhead":2,"head_dim":4,"dim_feedforward":16}}`

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, attention.Tensor{{{{1}}}}, resp.AttentionWeights)
	assert.Equal(t, 2, resp.ModelDimensions.NHead)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "created_at")
	assert.NotContains(t, string(out), `"id"`)
}

func TestStatusError(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"json error": {http.StatusBadRequest, `{"error":"input is empty"}`, "400 Bad Request: input is empty"},
		"plain body": {http.StatusInternalServerError, "kaputt", "500 Internal Server Error: kaputt"},
		"not found":  {http.StatusNotFound, `{"error":"run not found"}`, "404 Not Found: run not found"},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Process(t.Context(), &ProcessRequest{Input: " "})
			var se StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.want, se.Error())
		})
	}

	assert.Contains(t, StatusError{}.Error(), "server logs")
}

func TestHistory(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/history":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(HistoryResponse{Runs: []HistoryEntry{{ID: "b", Input: "x y", Tokens: 2, Heads: 4}}})
		case "/api/history/b":
			json.NewEncoder(w).Encode(ProcessResponse{ID: "b", InputTokens: []string{"x", "y"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	hist, err := c.History(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, hist.Runs, 1)
	assert.Equal(t, "x y", hist.Runs[0].Input)

	run, err := c.Run(t.Context(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, run.InputTokens)
}

func TestHeartbeatAndVersion(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/api/version":
			w.Write([]byte(`{"version":"1.2.3"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	assert.NoError(t, c.Heartbeat(t.Context()))

	v, err := c.Version(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}
