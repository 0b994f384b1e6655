/*
Package servers runs the offer API over HTTP.

Server wires the handlers into a chi router behind CORS and access-log
middleware, exposes the liveness and readiness probes used by load balancers,
and starts the Prometheus metrics listener next to the API listener.

# Probes

	GET /livez    always alive
	GET /readyz   503 while draining
	GET /drain    stop reporting ready
	GET /undrain  report ready again

pprof is mounted under /debug when enabled.

# Example Usage

	cfg := &api.HTTPServerConfig{
	    ListenAddr:  api.DefaultListenAddr,
	    MetricsAddr: "127.0.0.1:8090",
	    Log:         logger,
	}
	srv, err := servers.New(cfg, handlers.NewHandler(orchestrator, loader, nil, logger))
	if err != nil {
	    return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package servers
