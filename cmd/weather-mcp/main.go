package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/miyamo2/qilin"

	"github.com/i474232898/weather-dashboard/internal/bootstrap"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/mcptools"
)

func main() {
	// stdout carries the MCP stream.
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	d, err := bootstrap.NewDashboard(cfg)
	if err != nil {
		log.Fatalf("failed to set up dashboard: %v", err)
	}
	defer d.Close()

	q := qilin.New("weather",
		qilin.WithVersion("1.0.0"),
		qilin.WithJSONMarshalFunc(json.Marshal),
		qilin.WithJSONUnmarshalFunc(json.Unmarshal),
	)
	mcptools.Register(q, d.Client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := q.Start(qilin.StartWithContext(ctx)); err != nil {
		log.Printf("mcp server stopped: %v", err)
	}
}
