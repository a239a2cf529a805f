package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"qsim/internal/qerr"
	"qsim/internal/resource"
	"qsim/internal/simulator"
)

// metrics is the server's Prometheus instrumentation. It registers on its
// own registry so that several servers can live in one process.
type metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	simulations *prometheus.CounterVec
	simLatency  prometheus.Histogram
	qubits      prometheus.Histogram
	shots       prometheus.Counter
	rateLimited prometheus.Counter
}

func newMetrics(rc *resource.Controller) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qsim_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qsim_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qsim_simulations_total",
			Help: "Simulations by outcome",
		}, []string{"status"}),
		simLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qsim_simulation_duration_seconds",
			Help:    "Time spent evolving and sampling a circuit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		qubits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qsim_simulation_qubits",
			Help:    "Register width of completed simulations",
			Buckets: prometheus.LinearBuckets(1, 1, 24),
		}),
		shots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qsim_shots_total",
			Help: "Measurement shots drawn",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qsim_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.simulations,
		m.simLatency,
		m.qubits,
		m.shots,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if rc != nil {
		m.registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "qsim_state_vector_bytes",
				Help: "Bytes of state vector currently leased",
			}, func() float64 { return float64(rc.MemoryUsage()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "qsim_simulations_running",
				Help: "Simulations currently holding a lease",
			}, func() float64 { return float64(rc.Running()) }),
		)
	}
	return m
}

func (m *metrics) observeRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, statusLabel(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

func (m *metrics) observeSimulation(res *simulator.Result, err error) {
	if err != nil {
		m.simulations.WithLabelValues(outcome(err)).Inc()
		return
	}
	m.simulations.WithLabelValues("success").Inc()
	m.simLatency.Observe(res.Duration.Seconds())
	m.qubits.Observe(float64(res.NumQubits))
	m.shots.Add(float64(res.Shots))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, qerr.ErrInvalidCircuit), errors.Is(err, qerr.ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, qerr.ErrResourceLimit):
		return "limit"
	default:
		return "error"
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
