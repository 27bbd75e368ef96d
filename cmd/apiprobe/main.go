// apiprobe queries the remote telemetry backend for one device and prints
// the resolved bounds and a decoded sample batch as JSON. Useful for
// checking connectivity and payload decoding without touching the
// database.
//
// Usage:
//
//	apiprobe --config configs/collector.yaml --device 70B3D54990566062
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/api"
	"github.com/parth2411/sepa-iot-platform/internal/config"
	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/logging"
	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

func main() {
	configPath := flag.String("config", "configs/collector.yaml", "path to config file")
	deviceEUI := flag.String("device", "", "device EUI to probe (required)")
	verbose := flag.Bool("verbose", false, "print every record in the batch")
	flag.Parse()

	logger := logging.New(slog.LevelDebug, "apiprobe")

	if *deviceEUI == "" {
		logger.Error("--device is required")
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	catalog, err := device.LoadCatalog(cfg.Devices.File)
	if err != nil {
		logger.Error("failed to load device catalog", "file", cfg.Devices.File, "error", err)
		os.Exit(1)
	}
	dev, ok := catalog.Lookup(*deviceEUI)
	if !ok {
		logger.Error("device not in catalog", "device", *deviceEUI)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := api.NewClient(
		cfg.API.BoundsURL,
		cfg.API.FetchURL,
		api.WithLogger(logger),
		api.WithTimeouts(cfg.API.BoundsTimeout, cfg.API.FetchTimeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	start, end := client.DeviceBounds(ctx, dev.EUI, dev.Kind)
	logger.Info("resolved bounds",
		"device", dev.EUI,
		"type", dev.Kind.String(),
		"start", start,
		"end", end,
		"days", int(end.Sub(start).Hours()/24),
	)

	batch, err := client.FetchBatch(ctx, dev.EUI, dev.Kind, start)
	if err != nil {
		logger.Error("batch fetch failed", "error", err)
		os.Exit(1)
	}
	logger.Info("sample batch fetched", "records", len(batch))

	decoded, failed := 0, 0
	for i, raw := range batch {
		reading, err := decoder.Decode(dev.Kind, raw.Payload, dev.EmptyDistance)
		if err != nil {
			failed++
			logger.Warn("decode failed", "index", i, "payload", raw.Payload, "error", err)
			continue
		}
		decoded++

		if *verbose || i == 0 {
			ts, fellBack := timeparse.Normalize(raw.TimeStamp)
			out, _ := json.Marshal(map[string]any{
				"timestamp":          ts,
				"timestamp_raw":      raw.TimeStamp,
				"timestamp_fallback": fellBack,
				"payload":            raw.Payload,
				"reading":            reading,
			})
			fmt.Println(string(out))
		}
	}

	logger.Info("probe complete", "decoded", decoded, "failed", failed)
}
