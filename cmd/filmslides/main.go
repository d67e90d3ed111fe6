package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/LydiaBrothers/filmslides/internal/core/config"
	"github.com/LydiaBrothers/filmslides/internal/dataset"
	"github.com/LydiaBrothers/filmslides/internal/metrics"
	"github.com/LydiaBrothers/filmslides/internal/presentation"
	"github.com/LydiaBrothers/filmslides/internal/render"
	"github.com/LydiaBrothers/filmslides/internal/server"
	"github.com/LydiaBrothers/filmslides/internal/session"
	"github.com/LydiaBrothers/filmslides/internal/slides"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Initialize Logger. The level is raised or lowered once config is read.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 1. Load Configuration (includes slide definitions)
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())
	slog.Info("Loaded config",
		"source_type", cfg.Dataset.SourceType,
		"location", cfg.Dataset.Location(),
		"slides", len(cfg.SlideLoading.Definitions),
		"slides_dir", cfg.SlideLoading.ConfigDir,
	)

	// 2. Dataset schema and source
	var schema *dataset.Schema
	if cfg.Dataset.SchemaPath != "" {
		schema, err = dataset.LoadSchema(cfg.Dataset.SchemaPath)
		if err != nil {
			slog.Error("Failed to load dataset schema", "path", cfg.Dataset.SchemaPath, "error", err)
			os.Exit(1)
		}
	}

	timeout := cfg.Dataset.LoadTimeout()
	source, err := dataset.NewSource(cfg.Dataset.SourceType, cfg.Dataset.Location(), timeout, cfg.Dataset.S3Options(), cfg.Dataset.Bucket)
	if err != nil {
		slog.Error("Failed to initialize dataset source", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector("filmslides")
	loader := dataset.NewLoader(source, schema, timeout, collector)

	// 3. Slides and sessions
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	canvas := render.DefaultCanvas()
	canvas.Width, canvas.Height = cfg.Slides.Width, cfg.Slides.Height

	deck, err := slides.NewDeck(ctx, cfg.SlideLoading.Repository, canvas, cfg.Slides.Transition())
	if err != nil {
		slog.Error("Failed to build slides", "error", err)
		os.Exit(1)
	}

	store := session.NewStore(session.Options{
		Capacity: cfg.Session.Capacity,
		Shards:   cfg.Session.Shards,
		Deck:     deck,
		Observer: presentation.LogRedraw,
		Recorder: collector,
	})

	// 4. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), loader, collector, cfg.Server.Mode)
	presentation.NewService(loader, deck, store, canvas, collector).RegisterRoutes(srv.Engine)

	// 5. Fetch the dataset once in the background. Until it resolves, slide
	// requests get the loading placeholder; a failure is not retried.
	go func() {
		ds, err := loader.Load(ctx)
		if err != nil {
			return
		}
		if err := deck.Prerender(ctx, ds); err != nil {
			slog.Error("Failed to prerender slides", "error", err)
		}
	}()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
