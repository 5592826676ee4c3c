// Command forcegraph-tui shows a live force-directed layout in the
// terminal. The session is driven one frame per tick.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-forcegraph/pkg/config"
	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/pubsub"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

func main() {
	graphPath := flag.String("graph", "", "Graph file (.json, .yaml or .yml)")
	configPath := flag.String("config", "", "YAML configuration file")
	logPath := flag.String("log", "", "Write JSON logs to this file")
	flag.Parse()

	if *graphPath == "" {
		log.Fatal("-graph is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The terminal belongs to the UI, so logs only go to a file
	logger := logging.NewNopLogger()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger = logging.NewJSONLogger(f, cfg.Level())
	}

	bus := pubsub.NewBus(pubsub.WithLogger(logger))
	defer bus.Shutdown()
	events, err := bus.Subscribe(context.Background(), pubsub.AllTopics)
	if err != nil {
		log.Fatalf("Failed to subscribe to events: %v", err)
	}

	session, err := visualization.NewSession(cfg.Layout,
		visualization.WithLogger(logger),
		visualization.WithEventSink(bus))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	f, err := os.Open(*graphPath)
	if err != nil {
		log.Fatalf("Failed to open graph: %v", err)
	}
	data, err := visualization.ReadGraphData(f, visualization.FormatFromPath(*graphPath))
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read graph: %v", err)
	}
	if _, err := session.Load(data); err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	p := tea.NewProgram(initialModel(session, events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
