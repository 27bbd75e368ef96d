// collector pulls full telemetry histories for SEPA environmental IoT
// devices, decodes the vendor payloads and stores the results in
// PostgreSQL, optionally exporting per-device CSV files.
//
// Usage:
//
//	collector --config configs/collector.yaml --all
//	collector --config configs/collector.yaml --device 70B3D54990566062
//	collector --config configs/collector.yaml --type Hygro --max-days 30
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parth2411/sepa-iot-platform/internal/api"
	"github.com/parth2411/sepa-iot-platform/internal/config"
	"github.com/parth2411/sepa-iot-platform/internal/database"
	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/export"
	"github.com/parth2411/sepa-iot-platform/internal/fetcher"
	"github.com/parth2411/sepa-iot-platform/internal/logging"
	"github.com/parth2411/sepa-iot-platform/internal/metrics"
	"github.com/parth2411/sepa-iot-platform/internal/store"
	"github.com/parth2411/sepa-iot-platform/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/collector.yaml", "path to config file")
	deviceEUI := flag.String("device", "", "collect a single device by EUI")
	deviceType := flag.String("type", "", "collect every device of one family (Droplet, Echo, Hygro, HydroRanger, Theta)")
	all := flag.Bool("all", false, "collect every device in the catalog")
	maxDays := flag.Int("max-days", -1, "override collection.max_days from config")
	exportCSV := flag.Bool("export", false, "also write per-device CSV files")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(level, "collector")

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *maxDays >= 0 {
		cfg.Collection.MaxDays = *maxDays
	}

	catalog, err := device.LoadCatalog(cfg.Devices.File)
	if err != nil {
		logger.Error("failed to load device catalog", "file", cfg.Devices.File, "error", err)
		os.Exit(1)
	}
	logger.Info("device catalog loaded", "file", cfg.Devices.File, "devices", catalog.Len())

	targets, err := selectTargets(catalog, *deviceEUI, *deviceType, *all)
	if err != nil {
		logger.Error("invalid device selection", "error", err)
		os.Exit(2)
	}
	if len(targets) == 0 {
		logger.Error("no devices selected; use --device, --type or --all")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsMux(cfg.Metrics.Path),
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	client := api.NewClient(
		cfg.API.BoundsURL,
		cfg.API.FetchURL,
		api.WithLogger(logger),
		api.WithTimeouts(cfg.API.BoundsTimeout, cfg.API.FetchTimeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	f := fetcher.New(fetcher.Config{
		MaxDays:        cfg.Collection.MaxDays,
		BatchDelay:     cfg.Collection.BatchDelay,
		OnBadTimestamp: cfg.Collection.OnBadTimestamp,
	}, client, logger)

	var collected, failed int
	for i, dev := range targets {
		if ctx.Err() != nil {
			logger.Warn("collection interrupted", "remaining", len(targets)-i)
			break
		}

		logger.Info("processing device",
			"position", fmt.Sprintf("%d/%d", i+1, len(targets)),
			"device", dev.EUI,
			"name", dev.Name,
		)

		if runDevice(ctx, f, st, cfg, dev, *exportCSV, logger) {
			collected++
		} else {
			failed++
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx)

	// Per-device failures are tallied, not fatal: a partial run still
	// leaves good data in the store.
	logger.Info("collector finished",
		"devices", len(targets),
		"collected", collected,
		"failed", failed,
	)
}

// runDevice collects, stores and optionally exports one device history.
func runDevice(ctx context.Context, f *fetcher.Fetcher, st *store.Store, cfg *config.CollectorConfig, dev device.Descriptor, exportCSV bool, logger *slog.Logger) bool {
	res := f.FetchHistory(ctx, dev)
	if len(res.Records) == 0 {
		logger.Warn("no data collected", "device", dev.EUI)
		metrics.CollectionRuns.WithLabelValues("empty").Inc()
		return false
	}

	if _, err := st.InsertRecords(ctx, res.Records); err != nil {
		logger.Error("failed to store records", "device", dev.EUI, "error", err)
		metrics.CollectionRuns.WithLabelValues("failed").Inc()
		return false
	}
	if err := st.RecordRun(ctx, res); err != nil {
		logger.Warn("failed to log collection run", "device", dev.EUI, "error", err)
	}

	if exportCSV {
		path, err := export.WriteDevice(cfg.Export.Dir, dev, res.Records, cfg.Collection.MaxDays)
		if err != nil {
			logger.Warn("csv export failed", "device", dev.EUI, "error", err)
		} else {
			logger.Info("csv exported", "device", dev.EUI, "file", path)
		}
	}

	metrics.CollectionRuns.WithLabelValues("ok").Inc()
	logger.Info("device stored",
		"device", dev.EUI,
		"records", len(res.Records),
		"dropped", res.DroppedRecords,
		"batches", res.Batches,
	)
	return true
}

// selectTargets resolves the command line device selection against the
// catalog.
func selectTargets(catalog *device.Catalog, eui, typeName string, all bool) ([]device.Descriptor, error) {
	switch {
	case all:
		return catalog.All(), nil
	case eui != "":
		dev, ok := catalog.Lookup(eui)
		if !ok {
			return nil, fmt.Errorf("device %s not in catalog", eui)
		}
		return []device.Descriptor{dev}, nil
	case typeName != "":
		kind, err := device.ParseKind(typeName)
		if err != nil {
			return nil, err
		}
		return catalog.ByKind(kind), nil
	}
	return nil, nil
}

func metricsMux(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	return mux
}
