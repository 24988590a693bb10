package server

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/store"
	"github.com/attnviz/attnviz/transformer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, withHistory bool) (*Server, http.Handler) {
	t.Helper()

	cfg := transformer.DefaultConfig()
	cfg.Dropout = 0
	cfg.Seed = 7
	return newTestServerWithConfig(t, cfg, withHistory)
}

func newTestServerWithConfig(t *testing.T, cfg transformer.Config, withHistory bool) (*Server, http.Handler) {
	t.Helper()

	model, err := transformer.New(cfg)
	require.NoError(t, err)

	var history *store.Store
	if withHistory {
		history = &store.Store{DBPath: filepath.Join(t.TempDir(), "history.sqlite")}
		t.Cleanup(func() { history.Close() })
	}

	s := New(nil, model, history)
	h, err := s.GenerateRoutes()
	require.NoError(t, err)
	return s, h
}

func serve(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			json.NewEncoder(&buf).Encode(body) //nolint:errcheck
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error
}

func TestRoot(t *testing.T) {
	_, h := newTestServer(t, false)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := serve(h, method, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code, method)
	}

	w := serve(h, http.MethodGet, "/", nil)
	assert.Equal(t, "attnviz is running", w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProcessHandler(t *testing.T) {
	_, h := newTestServer(t, true)

	w := serve(h, http.MethodPost, "/api/process", api.ProcessRequest{Input: "The cat sat on the mat"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, []string{"The", "cat", "sat", "on", "the", "mat"}, resp.InputTokens)
	assert.Equal(t, api.ModelDimensions{DModel: 64, NHead: 4, HeadDim: 16, DimFeedforward: 128}, resp.ModelDimensions)
	assert.NotEmpty(t, resp.ID)

	batch, heads, queries, keys := resp.AttentionWeights.Shape()
	assert.Equal(t, []int{1, 4, 6, 6}, []int{batch, heads, queries, keys})

	// der gespeicherte Run muss identisch zurueckkommen
	w = serve(h, http.MethodGet, "/api/history/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored api.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	if diff := cmp.Diff(resp.AttentionWeights, stored.AttentionWeights); diff != "" {
		t.Errorf("stored weights mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, resp.InputTokens, stored.InputTokens)
	assert.Equal(t, "The cat sat on the mat", stored.Input)

	w = serve(h, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history api.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Runs, 1)
	assert.Equal(t, resp.ID, history.Runs[0].ID)
	assert.Equal(t, 6, history.Runs[0].Tokens)
	assert.Equal(t, 4, history.Runs[0].Heads)
}

func TestProcessHandlerErrors(t *testing.T) {
	_, h := newTestServer(t, false)

	cases := map[string]struct {
		body    any
		message string
	}{
		"empty input":  {api.ProcessRequest{Input: ""}, "input is empty"},
		"blank input":  {api.ProcessRequest{Input: "  \t\n"}, "input is empty"},
		"missing body": {nil, "missing request body"},
		"invalid json": {"{", ""},
		"wrong type":   {`{"input": 5}`, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(h, http.MethodPost, "/api/process", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			msg := errorMessage(t, w)
			if tc.message != "" {
				assert.Equal(t, tc.message, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestProcessWithoutHistory(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodPost, "/api/process", api.ProcessRequest{Input: "a b"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "id")
	assert.NotContains(t, resp, "created_at")

	w = serve(h, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())

	w = serve(h, http.MethodGet, "/api/history/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandlerErrors(t *testing.T) {
	_, h := newTestServer(t, true)

	for _, limit := range []string{"x", "0", "-3"} {
		w := serve(h, http.MethodGet, "/api/history?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}

	w := serve(h, http.MethodGet, "/api/history/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `run "unknown" not found`, errorMessage(t, w))
}

func TestHistoryLimit(t *testing.T) {
	_, h := newTestServer(t, true)

	for _, input := range []string{"one", "two", "three"} {
		w := serve(h, http.MethodPost, "/api/process", api.ProcessRequest{Input: input})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(h, http.MethodGet, "/api/history?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history api.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Runs, 2)
}

func TestHeatmapHandler(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view/heatmap.svg?input="+url.QueryEscape("The cat sat on the mat")+"&head=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Equal(t, 36, strings.Count(body, "<rect"))
	assert.Contains(t, body, "Attention Weights - Head 2")
	assert.Contains(t, body, "From: The, To: cat, Weight: ")
}

func TestHeatmapHandlerHead(t *testing.T) {
	_, h := newTestServer(t, false)

	cases := map[string]struct {
		head   string
		status int
		title  string
	}{
		"default":      {"", http.StatusOK, "Head 1"},
		"last":         {"4", http.StatusOK, "Head 4"},
		"above range":  {"99", http.StatusOK, "Head 4"},
		"below range":  {"-2", http.StatusOK, "Head 1"},
		"not a number": {"two", http.StatusBadRequest, ""},
		"fraction":     {"1.5", http.StatusBadRequest, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(h, http.MethodGet, "/view/heatmap.svg?input=a+b&head="+url.QueryEscape(tc.head), nil)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.title != "" {
				assert.Contains(t, w.Body.String(), "Attention Weights - "+tc.title)
			}
		})
	}
}

func TestHeatmapHandlerEmptyInput(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view/heatmap.svg", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "input is empty", errorMessage(t, w))
}

var runField = regexp.MustCompile(`name="run" value="([^"]+)"`)

func viewRunID(t *testing.T, body string) string {
	t.Helper()
	m := runField.FindStringSubmatch(body)
	require.Len(t, m, 2, "view page has no run field")
	return m[1]
}

func TestViewHeadSwitchKeepsWeights(t *testing.T) {
	cfg := transformer.DefaultConfig()
	cfg.Seed = 7
	require.InDelta(t, 0.1, cfg.Dropout, 1e-9)

	for _, withHistory := range []bool{false, true} {
		t.Run(fmt.Sprintf("history=%v", withHistory), func(t *testing.T) {
			_, h := newTestServerWithConfig(t, cfg, withHistory)

			w := serve(h, http.MethodGet, "/view?input="+url.QueryEscape("The cat sat on the mat")+"&head=1", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			page := w.Body.String()
			id := viewRunID(t, page)

			heatmapSVG := func(head string) string {
				w := serve(h, http.MethodGet, "/view/heatmap.svg?run="+id+"&head="+head, nil)
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())
				return w.Body.String()
			}

			first := heatmapSVG("1")
			third := heatmapSVG("3")
			again := heatmapSVG("1")

			assert.Equal(t, first, again, "head 1 -> head 3 -> head 1 must redraw the same weights")
			assert.NotEqual(t, first, third)
			assert.Contains(t, page, strings.TrimPrefix(first, xml.Header), "page heatmap differs from the run")

			// Head-Wechsel ueber das Formular behaelt den Run
			w = serve(h, http.MethodGet, "/view?run="+id+"&head=3", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, id, viewRunID(t, w.Body.String()))
			assert.Contains(t, w.Body.String(), strings.TrimPrefix(third, xml.Header))
			assert.Contains(t, w.Body.String(), `value="The cat sat on the mat"`)
			assert.Contains(t, w.Body.String(), `<option value="3" selected>3</option>`)
		})
	}
}

func TestViewStoredRun(t *testing.T) {
	_, h := newTestServer(t, true)

	w := serve(h, http.MethodPost, "/api/process", api.ProcessRequest{Input: "a b c"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = serve(h, http.MethodGet, "/view/heatmap.svg?run="+resp.ID+"&head=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Attention Weights - Head 2")
	assert.Equal(t, 9, strings.Count(w.Body.String(), "<rect"))
}

func TestViewUnknownRun(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view/heatmap.svg?run=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, errorMessage(t, w), `"missing"`)

	w = serve(h, http.MethodGet, "/view?run=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `<p class="error">`)
	assert.NotContains(t, w.Body.String(), `name="run"`)
}

func TestRunCacheEvictsOldest(t *testing.T) {
	rc := newRunCache(2)
	for _, id := range []string{"a", "b", "c"} {
		rc.put(&store.Run{ID: id})
	}

	_, ok := rc.get("a")
	assert.False(t, ok)
	for _, id := range []string{"b", "c"} {
		r, ok := rc.get(id)
		require.True(t, ok, id)
		assert.Equal(t, id, r.ID)
	}

	rc.put(&store.Run{ID: "b", Input: "x"})
	r, _ := rc.get("b")
	assert.Equal(t, "x", r.Input)
	assert.Len(t, rc.order, 2)
}

func TestDiagramHandler(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view/diagram.svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Q (64)")
	assert.Contains(t, w.Body.String(), "Split (4)")
}

func TestViewHandler(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view?head=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `value="The cat sat on the mat"`)
	assert.Contains(t, body, `<option value="3" selected>3</option>`)
	assert.Contains(t, body, `<option value="4">4</option>`)
	assert.Contains(t, body, "<span>mat</span>")
	assert.Contains(t, body, "Attention Weights - Head 3")
	assert.Contains(t, body, "Q (64)")
	assert.NotContains(t, body, "<?xml", "inline SVG darf keine XML-Deklaration haben")
}

func TestViewHandlerEmptyInput(t *testing.T) {
	_, h := newTestServer(t, false)

	w := serve(h, http.MethodGet, "/view?input=", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `<p class="error">input is empty</p>`)
	assert.Contains(t, w.Body.String(), "Q (64)")
}

func TestClientAgainstServer(t *testing.T) {
	_, h := newTestServer(t, true)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	base, err := url.Parse(ts.URL)
	require.NoError(t, err)
	client := api.NewClient(base, ts.Client())

	require.NoError(t, client.Heartbeat(t.Context()))
	require.NoError(t, client.Health(t.Context()))

	resp, err := client.Process(t.Context(), &api.ProcessRequest{Input: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, resp.InputTokens)

	run, err := client.Run(t.Context(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.InputTokens, run.InputTokens)

	_, err = client.Process(t.Context(), &api.ProcessRequest{Input: " "})
	var se api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "input is empty", se.ErrorMessage)
}

func TestAllowedHost(t *testing.T) {
	cases := map[string]bool{
		"":                 true,
		"localhost":        true,
		"LOCALHOST":        true,
		"attnviz.local":    true,
		"box.internal":     true,
		"app.localhost":    true,
		"example.com":      false,
		"localhost.evil":   false,
		"internal.example": false,
	}

	for host, want := range cases {
		assert.Equal(t, want, allowedHost(host), host)
	}
}

func TestAllowedHostsMiddleware(t *testing.T) {
	s, _ := newTestServer(t, false)
	s.addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}

	h, err := s.GenerateRoutes()
	require.NoError(t, err)

	cases := map[string]int{
		"localhost:5000":   http.StatusOK,
		"127.0.0.1:5000":   http.StatusOK,
		"[::1]:5000":       http.StatusOK,
		"[::1]":            http.StatusOK,
		"192.168.1.5:5000": http.StatusOK,
		"8.8.8.8:5000":     http.StatusForbidden,
		"evil.example.com": http.StatusForbidden,
	}

	for host, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Host = host
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, host)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Host = "attnviz.local:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Host = "evil.example.com"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, `host "evil.example.com" is not allowed`, errorMessage(t, w))

	// auf einer oeffentlichen Adresse wird nichts gefiltert
	s.addr = &net.TCPAddr{IP: net.IPv4(0, 0, 0, 0), Port: 5000}
	h, err = s.GenerateRoutes()
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Host = "evil.example.com"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoopbackOnly(t *testing.T) {
	cases := map[string]struct {
		addr net.Addr
		want bool
	}{
		"none":     {nil, false},
		"loopback": {&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}, true},
		"ipv6":     {&net.TCPAddr{IP: net.IPv6loopback, Port: 5000}, true},
		"public":   {&net.TCPAddr{IP: net.IPv4(0, 0, 0, 0), Port: 5000}, false},
		"unix":     {&net.UnixAddr{Name: "/tmp/attnviz.sock", Net: "unix"}, true},
	}

	for name, tc := range cases {
		assert.Equal(t, tc.want, loopbackOnly(tc.addr), name)
	}
}
