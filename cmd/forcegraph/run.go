package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/config"
	"github.com/dd0wney/cluso-forcegraph/pkg/health"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/metrics"
	"github.com/dd0wney/cluso-forcegraph/pkg/pubsub"
	"github.com/dd0wney/cluso-forcegraph/pkg/snapshot"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

// frame is the simulated host frame used while a focus tween plays out
const frame = 16 * time.Millisecond

type options struct {
	graphPath   string
	configPath  string
	outPath     string
	snapshot    string
	restore     string
	snapshotDir string
	s3Bucket    string
	s3Prefix    string
	focus       string
	metricsAddr string
	maxSteps    int

	// wait keeps the metrics endpoint up after the layout is written
	wait bool

	// logger overrides the JSON logger built from the config
	logger logging.Logger
	// store overrides the snapshot store built from the config
	store snapshot.Store
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	start := time.Now()
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if opts.snapshotDir != "" {
		cfg.Snapshot.Dir = opts.snapshotDir
	}
	if opts.s3Bucket != "" {
		cfg.Snapshot.S3.Bucket = opts.s3Bucket
	}
	if opts.s3Prefix != "" {
		cfg.Snapshot.S3.Prefix = opts.s3Prefix
	}

	logger := opts.logger
	if logger == nil {
		logger = logging.NewJSONLogger(os.Stderr, cfg.Level())
		logging.SetDefaultLogger(logger)
	}

	registry := metrics.NewRegistry()
	tracker := &layoutTracker{}
	checker := newHealthChecker(tracker)
	var server *http.Server
	if cfg.MetricsAddr != "" {
		server = serveMetrics(cfg.MetricsAddr, registry, checker, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", logging.Error(err))
			}
		}()
	}

	bus := pubsub.NewBus(pubsub.WithLogger(logger))
	defer bus.Shutdown()
	events, err := bus.Subscribe(ctx, pubsub.AllTopics)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events.Channel() {
			tracker.observe(ev)
			logger.Debug("Layout event",
				logging.String("topic", ev.Topic),
				logging.Any("payload", ev.Payload))
		}
	}()
	defer func() {
		events.Unsubscribe()
		<-done
	}()

	session, err := visualization.NewSession(cfg.Layout,
		visualization.WithLogger(logger),
		visualization.WithRecorder(registry),
		visualization.WithEventSink(bus))
	if err != nil {
		return err
	}

	var store snapshot.Store
	if opts.snapshot != "" || opts.restore != "" {
		store = opts.store
		if store == nil {
			if store, err = openStore(ctx, cfg); err != nil {
				return err
			}
		}
		registerStoreCheck(checker, store)
	}

	if opts.restore != "" {
		snap, err := store.Load(ctx, opts.restore)
		if err != nil {
			return fmt.Errorf("failed to restore %q: %w", opts.restore, err)
		}
		if err := session.Restore(snap); err != nil {
			return err
		}
		logger.Info("Snapshot restored", logging.String("name", opts.restore), logging.Count(len(snap.Nodes)))
	}

	if opts.graphPath != "" {
		data, err := readGraph(opts.graphPath)
		if err != nil {
			return err
		}
		if _, err := session.Load(data); err != nil {
			return err
		}
	}
	tracker.update(session.State())

	if err := settle(ctx, session, opts.maxSteps); err != nil {
		return err
	}

	if opts.focus != "" {
		if err := session.SetFocusNode(opts.focus); err != nil {
			return err
		}
		if err := settle(ctx, session, opts.maxSteps); err != nil {
			return err
		}
	}
	session.FitToView(false)
	tracker.update(session.State())

	if opts.snapshot != "" {
		if err := store.Save(ctx, opts.snapshot, session.Snapshot()); err != nil {
			return err
		}
		logger.Info("Snapshot saved", logging.String("name", opts.snapshot))
	}

	if err := writeState(opts.outPath, stdout, session.State()); err != nil {
		return err
	}
	registry.UpdateSystemMetrics(start)

	if server != nil && opts.wait {
		logger.Info("Layout written; serving metrics until interrupted", logging.String("addr", cfg.MetricsAddr))
		<-ctx.Done()
	}
	return nil
}

// settle drives the session one frame at a time until it stops. maxSteps
// caps the simulation steps taken; position tweens do not count.
func settle(ctx context.Context, session *visualization.Session, maxSteps int) error {
	steps := 0
	for {
		switch session.Phase() {
		case visualization.PhaseConverged, visualization.PhaseIdle:
			return nil
		case visualization.PhaseSimulating:
			if maxSteps > 0 && steps >= maxSteps {
				return nil
			}
			steps++
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		session.Tick(frame)
	}
}

func readGraph(path string) (*visualization.GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph: %w", err)
	}
	defer f.Close()
	data, err := visualization.ReadGraphData(f, visualization.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	return data, nil
}

func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	if cfg.UsesS3() {
		s3cfg := cfg.Snapshot.S3
		client, err := snapshot.NewS3Client(ctx, snapshot.S3Options{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return snapshot.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix)
	}
	dir := cfg.Snapshot.Dir
	if dir == "" {
		dir = "."
	}
	return snapshot.NewFileStore(dir)
}

func writeState(path string, stdout io.Writer, state visualization.LayoutState) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

func serveMetrics(addr string, registry *metrics.Registry, checker *health.HealthChecker, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	mux.HandleFunc("/health", checker.HTTPHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.HandleFunc("/live", checker.LivenessHandler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server starting", logging.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logging.Error(err))
		}
	}()
	return server
}
