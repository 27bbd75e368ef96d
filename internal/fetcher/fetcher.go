package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parth2411/sepa-iot-platform/internal/api"
	"github.com/parth2411/sepa-iot-platform/internal/decoder"
	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/metrics"
	"github.com/parth2411/sepa-iot-platform/internal/record"
	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

// Config holds collection policy for a fetcher.
type Config struct {
	// MaxDays caps how far back collection reaches from the resolved end
	// of history. Zero means the full resolved range.
	MaxDays int

	// BatchDelay throttles consecutive batch requests. Politeness, not
	// correctness.
	BatchDelay time.Duration

	// OnBadTimestamp decides what happens to a record whose timestamp
	// cannot be parsed at all.
	OnBadTimestamp timeparse.Policy
}

// DefaultConfig returns the historical collection policy.
func DefaultConfig() Config {
	return Config{
		BatchDelay:     100 * time.Millisecond,
		OnBadTimestamp: timeparse.PolicySubstituteNow,
	}
}

// Fetcher collects full per-device telemetry histories.
type Fetcher struct {
	cfg    Config
	client *api.Client
	logger *slog.Logger
}

// New creates a Fetcher.
func New(cfg Config, client *api.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{cfg: cfg, client: client, logger: logger}
}

// Result summarizes one device's collection run.
type Result struct {
	RunID  uuid.UUID
	Device device.Descriptor

	// Records is the accumulated history, sorted ascending by normalized
	// timestamp. Duplicates are not suppressed.
	Records []record.Canonical

	WindowStart time.Time
	WindowEnd   time.Time

	Batches            int
	SuccessfulBatches  int
	DroppedRecords     int
	TimestampFallbacks int
}

// FetchHistory collects all available history for one device. It does not
// return an error: every failure class degrades into a skipped record, a
// skipped window, or a default bounds window. The context cancels the run
// between batches.
func (f *Fetcher) FetchHistory(ctx context.Context, dev device.Descriptor) Result {
	res := Result{RunID: uuid.New(), Device: dev}
	log := f.logger.With("run_id", res.RunID, "device", dev.EUI, "type", dev.Kind.String())

	log.Info("starting collection", "name", dev.Name, "site", dev.Site)

	start, end := f.client.DeviceBounds(ctx, dev.EUI, dev.Kind)
	cur := newCursor(start, end, f.cfg.MaxDays)
	res.WindowStart, res.WindowEnd = cur.start, cur.end

	if cur.exhausted() {
		log.Warn("no valid date range", "start", cur.start, "end", cur.end)
		return res
	}

	log.Info("collecting",
		"from", cur.start,
		"to", cur.end,
		"days", int(cur.end.Sub(cur.start).Hours()/24),
	)

	for !cur.exhausted() {
		if ctx.Err() != nil {
			log.Warn("collection cancelled", "batches", cur.batch)
			break
		}

		cur.batch++
		log.Debug("fetching batch", "batch", cur.batch, "from", cur.start)

		fetchStart := time.Now()
		batch, err := f.client.FetchBatch(ctx, dev.EUI, dev.Kind, cur.start)
		metrics.ObserveBatchFetch(time.Since(fetchStart))

		if err != nil {
			metrics.BatchesTotal.WithLabelValues("error").Inc()
			log.Error("batch fetch failed, skipping ahead",
				"batch", cur.batch,
				"skip", failureSkip,
				"error", err,
			)
			cur.skipAhead()
			continue
		}
		metrics.BatchesTotal.WithLabelValues("ok").Inc()

		if len(batch) == 0 {
			log.Info("history exhausted", "after", cur.start)
			break
		}

		kept := 0
		for _, raw := range batch {
			rec, ok := f.processRecord(raw, dev, log, &res)
			if !ok {
				res.DroppedRecords++
				continue
			}
			res.Records = append(res.Records, rec)
			kept++
		}
		metrics.RecordsCollected.WithLabelValues(dev.Kind.String()).Add(float64(kept))

		cur.okay++
		log.Debug("batch collected", "batch", cur.batch, "records", kept)

		// Advance past the last record in the batch. The backend returns
		// records in timestamp order; if it does not, records between the
		// last timestamp and the true window end are silently skipped.
		last, _ := timeparse.Normalize(batch[len(batch)-1].TimeStamp)
		cur.advancePast(last)

		if f.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(f.cfg.BatchDelay):
			}
		}
	}

	res.Batches = cur.batch
	res.SuccessfulBatches = cur.okay

	record.SortByTime(res.Records)

	log.Info("collection complete",
		"records", len(res.Records),
		"batches", res.Batches,
		"successful_batches", res.SuccessfulBatches,
		"dropped", res.DroppedRecords,
	)

	return res
}

// processRecord decodes, normalizes and assembles one raw record. Any
// failure drops the record and leaves the batch running.
func (f *Fetcher) processRecord(raw api.RawTelemetryRecord, dev device.Descriptor, log *slog.Logger, res *Result) (record.Canonical, bool) {
	reading, err := decoder.Decode(dev.Kind, raw.Payload, dev.EmptyDistance)
	if err != nil {
		metrics.RecordsDropped.WithLabelValues("decode").Inc()
		log.Warn("payload decode failed, dropping record",
			"timestamp", raw.TimeStamp,
			"error", err,
		)
		return record.Canonical{}, false
	}

	ts, fellBack := timeparse.Normalize(raw.TimeStamp)
	if fellBack {
		res.TimestampFallbacks++
		metrics.TimestampFallbacks.Inc()
		if f.cfg.OnBadTimestamp == timeparse.PolicyDrop {
			metrics.RecordsDropped.WithLabelValues("timestamp").Inc()
			log.Warn("unparseable timestamp, dropping record", "timestamp", raw.TimeStamp)
			return record.Canonical{}, false
		}
	}

	rec, err := record.Assemble(raw, reading, dev, ts)
	if err != nil {
		metrics.RecordsDropped.WithLabelValues("assembly").Inc()
		log.Warn("record assembly failed, dropping record", "error", err)
		return record.Canonical{}, false
	}

	return rec, true
}
