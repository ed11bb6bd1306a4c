package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// driverMetrics are the Prometheus series exposed while a simulation is
// running, for long batch runs launched under a process supervisor that
// scrapes sidecar metrics rather than tailing stdout.
type driverMetrics struct {
	stepsTaken     prometheus.Counter
	simulationTime prometheus.Gauge
}

func newDriverMetrics() *driverMetrics {
	return &driverMetrics{
		stepsTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmidrive",
			Name:      "steps_taken_total",
			Help:      "Number of completed doStep calls.",
		}),
		simulationTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fmidrive",
			Name:      "simulation_time_seconds",
			Help:      "Current simulation time reported by the slave.",
		}),
	}
}

func (m *driverMetrics) register() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.stepsTaken, m.simulationTime)
	return reg
}

// serveMetrics starts a background HTTP server exposing reg on addr until
// the returned stop function is called; ctx only bounds that shutdown and
// does not stop the server by itself. Listen errors other than the server being closed are
// reported to stderr; this is best-effort instrumentation, not part of the
// simulation's success/failure path.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, stderr *os.File) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(stderr, "%s metrics server: %v\n", warnColor("warning:"), err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
