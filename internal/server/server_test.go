package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsim/internal/config"
	"qsim/internal/resource"
	"qsim/internal/simulator"
)

const bellBody = `{
  "circuit": {
    "numQubits": 2,
    "gates": [
      {"id": "g1", "type": "H", "qubitIndices": [0], "position": 0},
      {"id": "g2", "type": "CNOT", "targets": [0, 1], "column": 1}
    ]
  },
  "shots": 500,
  "seed": 7
}`

func newTestServer(t *testing.T, mutate ...func(*config.ServerConfig)) *Server {
	t.Helper()
	cfg := config.Default().Server
	cfg.RateLimit = 0
	for _, m := range mutate {
		m(&cfg)
	}
	return New(simulator.New(), cfg, WithVersion("test"))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStatus(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.EqualValues(t, simulator.DefaultMaxQubits, body["maxQubits"])

	assert.Equal(t, http.StatusNotFound, do(t, newTestServer(t), http.MethodGet, "/nope", "").Code)
}

func TestSimulateBell(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/simulate", bellBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[simulateResponse](t, rec)
	assert.Equal(t, 2, resp.NumQubits)
	assert.InDelta(t, 0.5, resp.Probabilities["00"], 1e-12)
	assert.InDelta(t, 0.5, resp.Probabilities["11"], 1e-12)
	assert.Nil(t, resp.StateVector)

	total := 0
	for _, s := range resp.Samples {
		assert.Contains(t, []string{"00", "11"}, s.Bitstring)
		total += s.Count
	}
	assert.Equal(t, 500, total)

	assert.NotEmpty(t, resp.Metadata.ExecutionID)
	assert.Equal(t, 2, resp.Metadata.CircuitDepth)
	assert.Equal(t, 2, resp.Metadata.GateCount)
	require.NotNil(t, resp.Metadata.Seed)
	assert.Equal(t, int64(7), *resp.Metadata.Seed)
}

func TestSimulateSeedIsReproducible(t *testing.T) {
	s := newTestServer(t)
	a := decode[simulateResponse](t, do(t, s, http.MethodPost, "/simulate", bellBody))
	b := decode[simulateResponse](t, do(t, s, http.MethodPost, "/simulate", bellBody))
	assert.Equal(t, a.Samples, b.Samples)
}

func TestSimulateZeroSeed(t *testing.T) {
	body := `{"circuit":{"numQubits":1,"gates":[{"type":"H","targets":[0],"column":0}]},"shots":10,"seed":0}`
	rec := do(t, newTestServer(t), http.MethodPost, "/simulate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw struct {
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw.Metadata, "seed")
	assert.EqualValues(t, 0, raw.Metadata["seed"])
}

func TestSimulateDefaultShots(t *testing.T) {
	s := New(simulator.New(), config.ServerConfig{Addr: ":0"}, WithDefaultShots(0))
	rec := do(t, s, http.MethodPost, "/simulate", `{"circuit":{"numQubits":1,"gates":[{"type":"X","targets":[0],"column":0}]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[simulateResponse](t, rec)
	assert.Empty(t, resp.Samples)
	assert.Equal(t, map[string]float64{"1": 1}, map[string]float64(resp.Probabilities))
}

func TestSimulateStateAndBloch(t *testing.T) {
	body := `{"circuit":{"numQubits":1,"gates":[{"type":"H","targets":[0],"column":0}]},"includeState":true,"includeBloch":true}`
	rec := do(t, newTestServer(t), http.MethodPost, "/simulate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[simulateResponse](t, rec)
	require.NotNil(t, resp.StateVector)
	require.Len(t, resp.StateVector.Amplitudes, 2)
	assert.InDelta(t, 0.5, resp.StateVector.Probabilities[0], 1e-12)
	assert.InDelta(t, 0.5, resp.StateVector.Probabilities[1], 1e-12)
	require.Len(t, resp.Bloch, 1)
	assert.InDelta(t, 1, resp.Bloch[0].X, 1e-9)
	assert.InDelta(t, 0, resp.Bloch[0].Z, 1e-9)
}

func TestSimulateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"circuit":`, http.StatusUnprocessableEntity},
		{"unknown gate", `{"circuit":{"numQubits":1,"gates":[{"type":"U3","targets":[0],"column":0}]}}`, http.StatusUnprocessableEntity},
		{"qubit out of range", `{"circuit":{"numQubits":1,"gates":[{"type":"H","targets":[1],"column":0}]}}`, http.StatusUnprocessableEntity},
		{"negative shots", `{"circuit":{"numQubits":1,"gates":[]},"shots":-5}`, http.StatusUnprocessableEntity},
		{"zero shots", `{"circuit":{"numQubits":1,"gates":[]},"shots":0}`, http.StatusUnprocessableEntity},
		{"column and position disagree", `{"circuit":{"numQubits":1,"gates":[{"type":"H","targets":[0],"column":0,"position":3}]}}`, http.StatusUnprocessableEntity},
		{"too many qubits", `{"circuit":{"numQubits":20,"gates":[]}}`, http.StatusRequestEntityTooLarge},
		{"too many shots", `{"circuit":{"numQubits":1,"gates":[]},"shots":100000}`, http.StatusRequestEntityTooLarge},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/simulate", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			body := decode[map[string]string](t, rec)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestSimulateBodyTooLarge(t *testing.T) {
	body := `{"circuit":{"numQubits":1,"name":"` + strings.Repeat("x", maxBodyBytes) + `"}}`
	rec := do(t, newTestServer(t), http.MethodPost, "/simulate", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSimulateBudgetTimeout(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrent: 1})
	held, err := rc.Acquire(context.Background(), 0)
	require.NoError(t, err)
	defer held.Release()

	cfg := config.Default().Server
	cfg.RateLimit = 0
	cfg.RequestTimeout = 20 * time.Millisecond
	s := New(simulator.New(simulator.WithResources(rc)), cfg, WithResources(rc))

	rec := do(t, s, http.MethodPost, "/simulate", bellBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/simulate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGates(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/gates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Gates      []gateInfo `json:"gates"`
		Categories []string   `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Gates, 15)
	assert.Equal(t, []string{"Single Qubit", "Rotation", "Multi Qubit"}, body.Categories)

	byType := map[string]gateInfo{}
	for _, g := range body.Gates {
		byType[string(g.Type)] = g
	}
	assert.Equal(t, 3, byType["Toffoli"].Qubits)
	assert.True(t, byType["RX"].Parametric)
	assert.Equal(t, "S†", byType["Sdg"].Symbol)
}

func TestExamples(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/examples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]exampleSummary](t, rec)
	require.NotEmpty(t, list)

	rec = do(t, s, http.MethodGet, "/examples/bell-state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	preset := decode[map[string]any](t, rec)
	assert.Equal(t, "bell-state", preset["id"])

	rec = do(t, s, http.MethodGet, "/examples/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = 0.001
		c.Burst = 2
	})
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/gates", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/gates", "").Code)

	rec := do(t, s, http.MethodGet, "/gates", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code, "health is never limited")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOpenOriginsWithoutCredentials(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.AllowedOrigins = nil })

	req := httptest.NewRequest(http.MethodOptions, "/simulate", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSListedOriginsAllowCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/simulate", bellBody)
	do(t, s, http.MethodPost, "/simulate", `{"circuit":{"numQubits":0}}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `qsim_simulations_total{status="success"} 1`)
	assert.Contains(t, out, `qsim_simulations_total{status="invalid"} 1`)
	assert.Contains(t, out, `qsim_shots_total 500`)
	assert.Contains(t, out, `qsim_http_requests_total{code="2xx",route="POST /simulate"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	l := newClientLimiter(1, 1)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.Len())

	now = now.Add(2 * clientTTL)
	assert.True(t, l.Allow("c"))
	assert.Equal(t, 1, l.Len())

	var unlimited *clientLimiter
	assert.True(t, unlimited.Allow("anyone"))
}

func TestListenAndServe(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.Addr = "127.0.0.1:0" })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
