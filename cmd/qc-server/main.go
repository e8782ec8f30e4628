package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"windplant_qc/internal/config"
	"windplant_qc/internal/plant"
	"windplant_qc/internal/store"
	"windplant_qc/internal/ws"
)

func main() {
	configPath := flag.String("config", "configs/engie.yaml", "path to plant QC configuration")
	inputDir := flag.String("input-dir", "input", "directory containing raw data files")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading config", "err", err)
		os.Exit(1)
	}

	// Set up WebSocket hub before the pipeline so dashboards connected
	// during a reload see per-stream progress.
	hub := ws.NewHub()
	bridge := ws.NewBridge(hub)

	p, err := plant.Load(cfg, *inputDir, logger, bridge)
	if err != nil {
		logger.Error("pipeline failed", "err", err)
		os.Exit(1)
	}

	dataStore := store.New()
	dataStore.SetPlant(p)

	if tr, ok := dataStore.GlobalTimeRange(); ok {
		logger.Info("data loaded",
			"plant", p.Meta.Name,
			"devices", len(p.Devices),
			"from", tr.Start.Format("2006-01-02"),
			"to", tr.End.Format("2006-01-02"))
	} else {
		logger.Error("no data loaded")
		os.Exit(1)
	}

	handler := ws.NewHandler(hub, dataStore, p.Meta.Name)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/ws", handler)

	// Serve frontend static files
	if _, err := os.Stat(*frontendDir); err == nil {
		logger.Info("serving frontend", "dir", *frontendDir)
		mux.Handle("/", http.FileServer(http.Dir(*frontendDir)))
	}

	logger.Info("starting server", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
