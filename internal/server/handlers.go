package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"qsim/internal/circuit"
	"qsim/internal/examples"
	"qsim/internal/gates"
	"qsim/internal/measure"
	"qsim/internal/qerr"
	"qsim/internal/simulator"
	"qsim/internal/statevec"
)

type simulateRequest struct {
	Circuit      circuit.Circuit `json:"circuit"`
	Shots        *int            `json:"shots,omitempty"`
	IncludeState bool            `json:"includeState"`
	IncludeBloch bool            `json:"includeBloch"`
	Seed         *int64          `json:"seed,omitempty"`
}

type stateVector struct {
	Amplitudes    []simulator.Amplitude `json:"amplitudes"`
	Probabilities []float64             `json:"probabilities"`
}

type metadata struct {
	ExecutionID  string  `json:"executionId"`
	DurationMs   float64 `json:"durationMs"`
	CircuitDepth int     `json:"circuitDepth"`
	GateCount    int     `json:"gateCount"`
	Shots        int     `json:"shots"`
	Seed         *int64  `json:"seed,omitempty"`
}

type simulateResponse struct {
	NumQubits     int                         `json:"numQubits"`
	Probabilities measure.Distribution        `json:"probabilities"`
	Samples       []measure.Tally             `json:"samples,omitempty"`
	StateVector   *stateVector                `json:"stateVector,omitempty"`
	Bloch         []statevec.BlochVector      `json:"bloch,omitempty"`
	Marginals     []statevec.QubitProbability `json:"marginals,omitempty"`
	Metadata      metadata                    `json:"metadata"`
}

type gateInfo struct {
	Type        gates.Kind     `json:"type"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Category    gates.Category `json:"category"`
	Qubits      int            `json:"qubits"`
	Parametric  bool           `json:"parametric"`
	Description string         `json:"description"`
}

type exampleSummary struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Difficulty  examples.Difficulty `json:"difficulty"`
	NumQubits   int                 `json:"numQubits"`
	GateCount   int                 `json:"gateCount"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "encoding response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// writeDetail writes an error body in the {"detail": ...} shape web clients
// of the simulator expect.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusFor maps simulator errors onto HTTP statuses.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, qerr.ErrResourceLimit), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, qerr.ErrInvalidCircuit), errors.Is(err, qerr.ErrInvalidRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      "qsim",
		"status":    "running",
		"version":   s.version,
		"maxQubits": s.sim.MaxQubits(),
		"maxShots":  s.sim.MaxShots(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleGates(w http.ResponseWriter, _ *http.Request) {
	all := gates.All()
	out := make([]gateInfo, len(all))
	for i, g := range all {
		out[i] = gateInfo{
			Type:        g.Kind,
			Name:        g.Name,
			Symbol:      g.Label(),
			Category:    g.Category,
			Qubits:      g.Arity,
			Parametric:  g.Parametric,
			Description: g.Description,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gates":      out,
		"categories": gates.Categories(),
	})
}

func (s *Server) handleExamples(w http.ResponseWriter, _ *http.Request) {
	presets := examples.List()
	out := make([]exampleSummary, len(presets))
	for i, p := range presets {
		out[i] = exampleSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Difficulty:  p.Difficulty,
			NumQubits:   p.Circuit.NumQubits,
			GateCount:   len(p.Circuit.Gates),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := examples.Get(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("example %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeDetail(w, statusFor(err), "reading request: "+err.Error())
		return
	}
	var req simulateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON: "+err.Error())
		return
	}

	shots := s.defaultShots
	if req.Shots != nil {
		if *req.Shots < 1 {
			writeDetail(w, http.StatusUnprocessableEntity, qerr.Requestf("shots must be at least 1, got %d", *req.Shots).Error())
			return
		}
		shots = *req.Shots
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	res, err := s.sim.Run(ctx, simulator.Request{
		Circuit:      req.Circuit,
		Shots:        shots,
		IncludeState: req.IncludeState,
		IncludeBloch: req.IncludeBloch,
		Seed:         req.Seed,
	})
	s.metrics.observeSimulation(res, err)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("simulation failed", "error", err)
		}
		writeDetail(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newSimulateResponse(res))
}

func newSimulateResponse(res *simulator.Result) simulateResponse {
	out := simulateResponse{
		NumQubits:     res.NumQubits,
		Probabilities: res.Probabilities,
		Samples:       res.Samples,
		Bloch:         res.Bloch,
		Marginals:     res.Marginals,
		Metadata: metadata{
			ExecutionID:  res.ID,
			DurationMs:   float64(res.Duration.Microseconds()) / 1000,
			CircuitDepth: res.Depth,
			GateCount:    res.GateCount,
			Shots:        res.Shots,
			Seed:         res.Seed,
		},
	}
	if res.State != nil {
		probs := make([]float64, len(res.State))
		for i, a := range res.State {
			probs[i] = a.Real*a.Real + a.Imaginary*a.Imaginary
		}
		out.StateVector = &stateVector{Amplitudes: res.State, Probabilities: probs}
	}
	return out
}
