package api

import (
	"log/slog"
	"time"

	"github.com/shopstr/greenlight-backend/metrics"
)

// DefaultListenAddr is where the API listens unless configured otherwise.
const DefaultListenAddr = "0.0.0.0:8081"

// HTTPServerConfig contains all configuration parameters for the HTTP server.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the HTTP server will listen on.
	ListenAddr string

	// MetricsAddr is the address and port for the metrics server.
	// If empty, metrics server will not be started.
	MetricsAddr string

	// Metrics serves the registry the offer recorder writes to. Built from
	// MetricsAddr when nil.
	Metrics *metrics.MetricsServer

	// EnablePprof enables the pprof debugging API when true.
	EnablePprof bool

	// CORSMaxAge is how long browsers may cache preflight results.
	CORSMaxAge time.Duration

	Log *slog.Logger

	// DrainDuration is the time to wait after marking server not ready
	// before shutting down, allowing load balancers to detect the change.
	DrainDuration time.Duration

	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}
