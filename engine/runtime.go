// Package engine hosts the reclaim runtime: it builds components from
// configuration, wires their dependencies, drives their lifecycle, and
// serves the metrics and health endpoints.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/componentregistry"
	"github.com/c360/reclaim/config"
	"github.com/c360/reclaim/errors"
	"github.com/c360/reclaim/health"
	"github.com/c360/reclaim/metric"
	"github.com/c360/reclaim/natsclient"
)

// stopTimeout bounds how long each component gets to shut down.
const stopTimeout = 10 * time.Second

// Runtime owns all running components and their shared infrastructure.
type Runtime struct {
	cfg        *config.Config
	registry   *component.Registry
	natsClient *natsclient.Client
	metrics    *metric.Metrics
	promReg    *prometheus.Registry
	logger     *slog.Logger

	httpServer *http.Server

	mu         sync.Mutex
	components map[string]component.Discoverable
	started    []string // start order, for reverse-order shutdown
	running    bool
}

// NewRuntime builds a runtime from configuration. Components are created
// but not started; Start performs all I/O.
func NewRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := component.NewRegistry()
	if err := componentregistry.Register(registry); err != nil {
		return nil, errors.Wrap(err, "Runtime", "NewRuntime", "component registration")
	}

	metrics := metric.NewMetrics()
	promReg, err := metric.NewRegistry(metrics)
	if err != nil {
		return nil, errors.Wrap(err, "Runtime", "NewRuntime", "metrics registry")
	}

	natsClient, err := natsclient.NewClient(cfg.NATS.URL,
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait.Std()),
		natsclient.WithFailureHook(metrics.NATSFailures.Inc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Runtime", "NewRuntime", "nats client")
	}

	rt := &Runtime{
		cfg:        cfg,
		registry:   registry,
		natsClient: natsClient,
		metrics:    metrics,
		promReg:    promReg,
		logger:     logger,
		components: make(map[string]component.Discoverable),
	}

	if err := rt.buildComponents(); err != nil {
		return nil, err
	}
	return rt, nil
}

// buildComponents instantiates every configured component through the
// registry.
func (r *Runtime) buildComponents() error {
	deps := component.Dependencies{
		NATSClient: r.natsClient,
		Metrics:    r.metrics,
		Logger:     r.logger,
	}

	// Deterministic creation order keeps logs and errors stable.
	names := make([]string, 0, len(r.cfg.Components))
	for name := range r.cfg.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		compCfg := r.cfg.Components[name]
		instance, err := r.registry.Create(compCfg.Type, name, compCfg.Config, deps)
		if err != nil {
			return errors.Wrap(err, "Runtime", "buildComponents", fmt.Sprintf("create %s", name))
		}
		r.components[name] = instance

		r.logger.Info("Component created",
			"instance", name,
			"type", compCfg.Type)
	}
	return nil
}

// Start connects to NATS, starts every component, and serves the HTTP
// endpoints. On any component failure the already-started components are
// stopped in reverse order.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Runtime", "Start", "check running state")
	}

	if err := r.natsClient.Connect(ctx); err != nil {
		return errors.WrapTransient(err, "Runtime", "Start", "connect to NATS")
	}
	r.metrics.NATSConnected.Set(1)

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		instance := r.components[name]
		lc, ok := instance.(component.LifecycleComponent)
		if !ok {
			continue
		}

		if err := lc.Initialize(); err != nil {
			r.stopStartedLocked()
			return errors.Wrap(err, "Runtime", "Start", fmt.Sprintf("initialize %s", name))
		}
		if err := lc.Start(ctx); err != nil {
			r.stopStartedLocked()
			return errors.Wrap(err, "Runtime", "Start", fmt.Sprintf("start %s", name))
		}
		r.started = append(r.started, name)

		r.logger.Info("Component started", "instance", name)
	}

	r.startHTTPLocked()
	r.running = true

	r.logger.Info("Runtime started",
		"components", len(r.started),
		"http_addr", r.cfg.HTTP.Addr,
		"nats_url", r.cfg.NATS.URL)

	return nil
}

// Stop shuts components down in reverse start order, then closes the HTTP
// server and the NATS connection.
func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	r.stopStartedLocked()

	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(ctx); err != nil {
			r.logger.Warn("HTTP server shutdown failed", "error", err)
		}
		r.httpServer = nil
	}

	if err := r.natsClient.Close(ctx); err != nil {
		r.logger.Warn("NATS client close failed", "error", err)
	}
	r.metrics.NATSConnected.Set(0)

	r.running = false
	r.logger.Info("Runtime stopped")
	return nil
}

// stopStartedLocked stops started components in reverse order. Callers
// hold r.mu.
func (r *Runtime) stopStartedLocked() {
	for i := len(r.started) - 1; i >= 0; i-- {
		name := r.started[i]
		lc, ok := r.components[name].(component.LifecycleComponent)
		if !ok {
			continue
		}
		if err := lc.Stop(stopTimeout); err != nil {
			r.logger.Warn("Component stop failed",
				"instance", name,
				"error", err)
		} else {
			r.logger.Info("Component stopped", "instance", name)
		}
	}
	r.started = nil
}

// startHTTPLocked wires the metrics and health endpoints and starts the
// listener. Callers hold r.mu.
func (r *Runtime) startHTTPLocked() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(r.promReg))
	mux.HandleFunc("/healthz", r.handleHealth)

	r.httpServer = &http.Server{
		Addr:              r.cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("HTTP server failed", "error", err)
		}
	}()
}

// handleHealth reports per-component health. The response is 200 when all
// components are healthy and 503 otherwise.
func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	statuses := r.Health()

	allHealthy := true
	for _, st := range statuses {
		if !st.Healthy {
			allHealthy = false
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(statuses); err != nil {
		r.logger.Warn("health response encoding failed", "error", err)
	}
}

// Health returns the sanitized health status of every component.
func (r *Runtime) Health() map[string]health.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]health.Status, len(r.components))
	for name, instance := range r.components {
		out[name] = health.FromComponentHealth(name, instance.Health())
	}
	return out
}

// Components returns a snapshot of the runtime's component instances.
func (r *Runtime) Components() map[string]component.Discoverable {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]component.Discoverable, len(r.components))
	for name, instance := range r.components {
		out[name] = instance
	}
	return out
}

// Run starts the runtime and blocks until the context is cancelled, then
// performs a bounded shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return r.Stop(shutdownCtx)
}
