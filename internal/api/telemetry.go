package api

import (
	"context"
	"net/url"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

// DefaultBoundsWindow is the degraded window returned when the bounds
// endpoint cannot be queried: the last year up to now.
const DefaultBoundsWindow = 365 * 24 * time.Hour

// RawTelemetryRecord is one record in a batch-fetch response, exactly as
// the backend returns it.
type RawTelemetryRecord struct {
	TimeStamp string `json:"TimeStamp"`
	DevEUI    string `json:"DevEUI"`
	Payload   string `json:"Payload"`
	Metadata  string `json:"Metadata,omitempty"`
}

// boundsResponse from the date-bounds endpoint.
type boundsResponse struct {
	StartTS string `json:"startTS"`
	EndTS   string `json:"endTS"`
}

// DeviceBounds queries the overall time range covered by a device's stored
// records. It never fails outward: on any error (network, status,
// malformed body) it returns the default window ending now, so callers
// always get a usable, if degraded, range.
func (c *Client) DeviceBounds(ctx context.Context, eui string, kind device.Kind) (start, end time.Time) {
	query := url.Values{}
	query.Set("device", eui)
	if kind.NeedsTypeParam() {
		query.Set("type", kind.String())
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.boundsTimeout)
	defer cancel()

	var resp boundsResponse
	if err := c.getJSON(reqCtx, c.boundsURL, query, &resp); err != nil {
		c.logger.Error("bounds query failed, using default window",
			"device", eui,
			"type", kind.String(),
			"error", err,
		)
		end = time.Now()
		return end.Add(-DefaultBoundsWindow), end
	}

	start, _ = timeparse.Normalize(resp.StartTS)
	end, _ = timeparse.Normalize(resp.EndTS)
	return start, end
}

// FetchBatch requests one batch of records at or after the given instant.
// The backend decides the batch size; an empty slice means the device's
// history is exhausted past that point.
func (c *Client) FetchBatch(ctx context.Context, eui string, kind device.Kind, from time.Time) ([]RawTelemetryRecord, error) {
	query := url.Values{}
	query.Set("device", eui)
	query.Set("timestamp", FormatInstant(from))
	if kind.NeedsTypeParam() {
		query.Set("type", kind.String())
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	var records []RawTelemetryRecord
	if err := c.getJSON(reqCtx, c.fetchURL, query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FormatInstant renders an instant the way the fetch endpoint expects:
// "Z"-suffixed ISO-8601 in UTC, whole seconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
