// Package metrics exposes Prometheus metrics for the offer backend on a
// dedicated listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects offer handshake metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	offers          *prometheus.CounterVec
	handshake       prometheus.Histogram
	credentialLoads *prometheus.CounterVec
}

// NewRecorder registers the offer metrics with reg under namespace.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_requests_total",
			Help:      "Offer requests by the last handshake state reached and outcome.",
		}, []string{"state", "outcome"}),
		handshake: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offer_handshake_duration_seconds",
			Help:      "Time spent driving the scheduler handshake and offer creation.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		credentialLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_loads_total",
			Help:      "Developer credential resolutions by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{r.offers, r.handshake, r.credentialLoads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveOffer records the outcome of one create-offer run.
func (r *Recorder) ObserveOffer(state string, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.offers.WithLabelValues(state, outcome(err)).Inc()
	r.handshake.Observe(took.Seconds())
}

// ObserveCredentialLoad records the outcome of one credential resolution.
func (r *Recorder) ObserveCredentialLoad(err error) {
	if r == nil {
		return
	}
	r.credentialLoads.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// MetricsServer serves the Prometheus registry over HTTP.
type MetricsServer struct {
	registry *prometheus.Registry
	recorder *Recorder
	srv      *http.Server
}

// New creates a registry with process and Go collectors plus the offer
// metrics. The listener is only started by ListenAndServe.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder, err := NewRecorder(namespace, registry)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &MetricsServer{
		registry: registry,
		recorder: recorder,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (m *MetricsServer) Recorder() *Recorder {
	return m.recorder
}

func (m *MetricsServer) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsServer) ListenAndServe() error {
	err := m.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
