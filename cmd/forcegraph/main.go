// Command forcegraph lays out a graph headlessly. It loads a JSON or YAML
// graph, runs the force simulation until it settles, optionally refocuses
// on a node, and writes the resulting layout state as JSON.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var opts options
	flag.StringVar(&opts.graphPath, "graph", "", "Graph file (.json, .yaml or .yml)")
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&opts.outPath, "out", "", "Write layout state here (default stdout)")
	flag.StringVar(&opts.snapshot, "snapshot", "", "Save a snapshot under this name when done")
	flag.StringVar(&opts.restore, "restore", "", "Restore the snapshot with this name before loading")
	flag.StringVar(&opts.snapshotDir, "snapshot-dir", "", "Directory for snapshots (overrides config)")
	flag.StringVar(&opts.s3Bucket, "s3-bucket", "", "Keep snapshots in this S3 bucket (overrides config)")
	flag.StringVar(&opts.s3Prefix, "s3-prefix", "", "Key prefix inside the S3 bucket")
	flag.StringVar(&opts.focus, "focus", "", "Node id to focus after the first layout settles")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address and wait for a signal")
	flag.IntVar(&opts.maxSteps, "max-steps", 0, "Cap simulation steps per run (0 uses the configured budget)")
	flag.Parse()
	opts.wait = true

	if opts.graphPath == "" && opts.restore == "" {
		log.Fatal("-graph or -restore is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("forcegraph: %v", err)
	}
}
