package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/HonRosie/probable-octo-tribble/internal/core/config"
	"github.com/HonRosie/probable-octo-tribble/internal/core/storage/sqlite"
	"github.com/HonRosie/probable-octo-tribble/internal/decoder"
	"github.com/HonRosie/probable-octo-tribble/internal/ingestion"
	"github.com/HonRosie/probable-octo-tribble/internal/migrations"
	"github.com/HonRosie/probable-octo-tribble/internal/query"
	"github.com/HonRosie/probable-octo-tribble/internal/server"
)

const defaultConfigPath = "hourcount.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	eventsPath := flag.String("events", "", "Path to the events CSV file to ingest at startup")
	serverMode := flag.Bool("server", false, "Serve the query API over HTTP after ingestion")
	customerID := flag.String("customer-id", "", "Customer to query (one-shot mode)")
	startArg := flag.String("start", "", "Start of the query range, RFC 3339 (one-shot mode)")
	endArg := flag.String("end", "", "End of the query range, RFC 3339 (one-shot mode)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	// The default config file is optional; an explicitly passed one is not.
	path := *configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	cfg, err := corecfg.Load(path)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (embedded SQLite)
	adapter, err := sqlite.Open(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer adapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// 3. Ingest events (runs once; queries read the persisted counters)
	if *eventsPath != "" {
		ingestSvc := ingestion.NewService(adapter, cfg.Ingestion.BatchSize, cfg.Ingestion.WorkerCount)
		if err := ingestSvc.IngestFrom(ctx, decoder.NewCSVSource(*eventsPath)); err != nil {
			slog.Error("Ingestion failed", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("No events file provided, serving previously ingested counters")
	}

	// 4. Initialize Query side
	querySvc := query.NewService(adapter)

	if *serverMode {
		srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), adapter.DB(), cfg.Server.Mode)
		querySvc.RegisterRoutes(srv.Engine)

		// HTTP server blocks until ctx is cancelled.
		if err := srv.Run(ctx); err != nil {
			slog.Error("Server stopped with error", "error", err)
		}

		slog.Info("Shutdown complete")
		return
	}

	// One-shot query mode.
	if *customerID == "" || *startArg == "" || *endArg == "" {
		slog.Error("Missing one of required args: customer-id, start or end")
		os.Exit(1)
	}

	start, err := decoder.ParseTimestamp(*startArg)
	if err != nil {
		slog.Error("Invalid start timestamp", "value", *startArg, "error", err)
		os.Exit(1)
	}
	end, err := decoder.ParseTimestamp(*endArg)
	if err != nil {
		slog.Error("Invalid end timestamp", "value", *endArg, "error", err)
		os.Exit(1)
	}

	resp, err := querySvc.HourlyCounts(ctx, query.HourlyCountsRequest{
		CustomerID: *customerID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		slog.Error("Query failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		slog.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
