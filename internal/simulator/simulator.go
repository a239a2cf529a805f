// Package simulator runs circuits end to end: validate, evolve, extract
// probabilities, sample. It is the contract the CLI, the HTTP server and the
// viewer call into.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"qsim/internal/circuit"
	"qsim/internal/logging"
	"qsim/internal/measure"
	"qsim/internal/qerr"
	"qsim/internal/resource"
	"qsim/internal/statevec"
)

// Default request limits.
const (
	DefaultMaxQubits = 12
	DefaultMaxShots  = 10000
)

// Request is one simulation.
type Request struct {
	Circuit circuit.Circuit

	// Shots is the number of samples to draw. Zero skips sampling.
	Shots int

	// IncludeState adds the raw amplitudes to the result.
	IncludeState bool

	// IncludeBloch adds per-qubit Bloch vectors and marginals.
	IncludeBloch bool

	// Seed fixes the sampler's random source. Nil draws a fresh seed.
	Seed *int64
}

// Amplitude is one complex amplitude split into its parts.
type Amplitude struct {
	Real      float64 `json:"real"`
	Imaginary float64 `json:"imaginary"`
}

// Result is the outcome of a simulation.
type Result struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name,omitempty"`
	NumQubits     int                         `json:"numQubits"`
	Depth         int                         `json:"depth"`
	GateCount     int                         `json:"gateCount"`
	Probabilities measure.Distribution        `json:"probabilities"`
	Shots         int                         `json:"shots,omitempty"`
	Seed          *int64                      `json:"seed,omitempty"`
	Counts        measure.Counts              `json:"counts,omitempty"`
	Samples       []measure.Tally             `json:"samples,omitempty"`
	State         []Amplitude                 `json:"state,omitempty"`
	Bloch         []statevec.BlochVector      `json:"bloch,omitempty"`
	Marginals     []statevec.QubitProbability `json:"marginals,omitempty"`
	Duration      time.Duration               `json:"duration"`
}

// Simulator runs requests under configured limits. It holds no per-request
// state and is safe for concurrent use.
type Simulator struct {
	maxQubits int
	maxShots  int
	resources *resource.Controller
	logger    *slog.Logger
	seed      func() int64
	newID     func() string
	now       func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMaxQubits caps the register width. Values above
// circuit.HardMaxQubits are clamped.
func WithMaxQubits(n int) Option {
	return func(s *Simulator) { s.maxQubits = min(n, circuit.HardMaxQubits) }
}

// WithMaxShots caps the shot count per request.
func WithMaxShots(n int) Option {
	return func(s *Simulator) { s.maxShots = n }
}

// WithResources bounds concurrent runs and live state-vector memory.
func WithResources(c *resource.Controller) Option {
	return func(s *Simulator) { s.resources = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithSeedFunc sets the source of seeds for requests without one.
func WithSeedFunc(fn func() int64) Option {
	return func(s *Simulator) { s.seed = fn }
}

// WithClock replaces time.Now for duration measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New returns a Simulator with the default limits unless
// overridden.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		maxQubits: DefaultMaxQubits,
		maxShots:  DefaultMaxShots,
		logger:    logging.Discard(),
		seed:      rand.Int63,
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxQubits returns the configured register limit.
func (s *Simulator) MaxQubits() int { return s.maxQubits }

// MaxShots returns the configured shot limit.
func (s *Simulator) MaxShots() int { return s.maxShots }

// Run executes one request. Errors wrap qerr.ErrInvalidCircuit,
// qerr.ErrInvalidRequest or qerr.ErrResourceLimit, or the context error when
// ctx ends while waiting for budget. No partial result is returned on error.
func (s *Simulator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Shots < 0 {
		return nil, qerr.Requestf("shots must not be negative, got %d", req.Shots)
	}
	if req.Shots > s.maxShots {
		return nil, &qerr.LimitError{Resource: "shots", Requested: int64(req.Shots), Limit: int64(s.maxShots)}
	}

	sched, err := req.Circuit.Schedule(s.maxQubits)
	if err != nil {
		s.logger.Warn("circuit rejected", "name", req.Circuit.Name, "error", err)
		return nil, err
	}

	lease, err := s.resources.Acquire(ctx, statevec.Bytes(sched.NumQubits()))
	if err != nil {
		return nil, fmt.Errorf("waiting for simulation budget: %w", err)
	}
	defer lease.Release()

	start := s.now()
	res, err := s.execute(ctx, sched, req)
	if err != nil {
		return nil, err
	}
	res.Duration = s.now().Sub(start)

	s.logger.Info("simulation completed",
		"id", res.ID,
		"qubits", res.NumQubits,
		"gates", res.GateCount,
		"depth", res.Depth,
		"shots", res.Shots,
		"outcomes", len(res.Probabilities),
		"duration", res.Duration,
	)
	return res, nil
}

func (s *Simulator) execute(ctx context.Context, sched *circuit.Schedule, req Request) (*Result, error) {
	if s.logger.Enabled(ctx, logging.LevelTrace) {
		sched.Each(func(g circuit.Gate) bool {
			s.logger.Log(ctx, logging.LevelTrace, "gate", "kind", g.Kind, "targets", g.Targets, "column", g.Column, "angle", g.Angle())
			return true
		})
	}

	st, err := statevec.Evolve(sched)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:            s.newID(),
		Name:          sched.Name(),
		NumQubits:     sched.NumQubits(),
		Depth:         sched.Depth(),
		GateCount:     sched.Len(),
		Probabilities: measure.Probabilities(st),
	}

	if req.Shots > 0 {
		seed := s.seed()
		if req.Seed != nil {
			seed = *req.Seed
		}
		counts, err := measure.Sample(st, req.Shots, measure.NewSource(seed))
		if err != nil {
			return nil, err
		}
		res.Shots = req.Shots
		res.Seed = &seed
		res.Counts = counts
		res.Samples = counts.Sorted()
	}

	if req.IncludeState {
		res.State = make([]Amplitude, st.Len())
		for i := range res.State {
			a := st.Amplitude(i)
			res.State[i] = Amplitude{Real: real(a), Imaginary: imag(a)}
		}
	}
	if req.IncludeBloch {
		res.Bloch = st.BlochVectors()
		res.Marginals = st.Marginals()
	}
	return res, nil
}

// RunBatch runs independent requests in parallel and returns results in
// input order. The first failure cancels the remaining runs.
func (s *Simulator) RunBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)

	limit := int(s.resources.MaxConcurrent())
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("circuit %d (%s): %w", i, req.Circuit.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
