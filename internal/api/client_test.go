package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/device"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://bounds.example.com", "https://fetch.example.com")

		if c.boundsURL != "https://bounds.example.com" {
			t.Errorf("boundsURL = %q", c.boundsURL)
		}
		if c.fetchURL != "https://fetch.example.com" {
			t.Errorf("fetchURL = %q", c.fetchURL)
		}
		if c.boundsTimeout != DefaultBoundsTimeout {
			t.Errorf("boundsTimeout = %v, want %v", c.boundsTimeout, DefaultBoundsTimeout)
		}
		if c.fetchTimeout != DefaultFetchTimeout {
			t.Errorf("fetchTimeout = %v, want %v", c.fetchTimeout, DefaultFetchTimeout)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeouts option", func(t *testing.T) {
		c := NewClient("", "", WithTimeouts(2*time.Second, 5*time.Second))
		if c.boundsTimeout != 2*time.Second {
			t.Errorf("boundsTimeout = %v, want 2s", c.boundsTimeout)
		}
		if c.fetchTimeout != 5*time.Second {
			t.Errorf("fetchTimeout = %v, want 5s", c.fetchTimeout)
		}
	})

	t.Run("with retries option", func(t *testing.T) {
		c := NewClient("", "", WithRetries(5, 2*time.Second))
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want 5", c.maxRetries)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want 2s", c.retryBackoff)
		}
	})
}

func TestDeviceBounds(t *testing.T) {
	t.Run("successful query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("device"); got != "F863663062792909" {
				t.Errorf("device param = %q", got)
			}
			if got := r.URL.Query().Get("type"); got != "HydroRanger" {
				t.Errorf("type param = %q, want HydroRanger", got)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"startTS": "2022-01-01T00:00:00Z",
				"endTS":   "2023-01-01T00:00:00Z",
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "")
		start, end := c.DeviceBounds(context.Background(), "F863663062792909", device.KindHydroRanger)

		if want := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})

	t.Run("type param omitted for droplet", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("type") {
				t.Error("type param should be omitted for Droplet")
			}
			json.NewEncoder(w).Encode(map[string]string{
				"startTS": "2022-01-01T00:00:00Z",
				"endTS":   "2023-01-01T00:00:00Z",
			})
		}))
		defer srv.Close()

		NewClient(srv.URL, "").DeviceBounds(context.Background(), "X", device.KindDroplet)
	})

	t.Run("failure degrades to default window", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", WithRetries(0, time.Millisecond))
		start, end := c.DeviceBounds(context.Background(), "X", device.KindEcho)

		if end.Before(time.Now().Add(-time.Minute)) {
			t.Errorf("end = %v, want ~now", end)
		}
		if got := end.Sub(start); got != DefaultBoundsWindow {
			t.Errorf("window = %v, want %v", got, DefaultBoundsWindow)
		}
	})

	t.Run("malformed body degrades to default window", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", WithRetries(0, time.Millisecond))
		start, end := c.DeviceBounds(context.Background(), "X", device.KindEcho)
		if got := end.Sub(start); got != DefaultBoundsWindow {
			t.Errorf("window = %v, want %v", got, DefaultBoundsWindow)
		}
	})
}

func TestFetchBatch(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("timestamp"); got != "2023-06-01T12:30:00Z" {
				t.Errorf("timestamp param = %q", got)
			}
			json.NewEncoder(w).Encode([]RawTelemetryRecord{
				{TimeStamp: "2023-06-01T12:30:05Z", DevEUI: "X", Payload: "05bc00000ed805480000"},
				{TimeStamp: "2023-06-01T12:45:05Z", DevEUI: "X", Payload: "05bc00000ed805480000"},
			})
		}))
		defer srv.Close()

		c := NewClient("", srv.URL)
		from := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)
		records, err := c.FetchBatch(context.Background(), "X", device.KindEcho, from)
		if err != nil {
			t.Fatalf("FetchBatch: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		if records[0].Payload != "05bc00000ed805480000" {
			t.Errorf("Payload = %q", records[0].Payload)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer srv.Close()

		c := NewClient("", srv.URL)
		records, err := c.FetchBatch(context.Background(), "X", device.KindEcho, time.Now())
		if err != nil {
			t.Fatalf("FetchBatch: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("got %d records, want 0", len(records))
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient("", srv.URL, WithRetries(0, time.Millisecond))
		_, err := c.FetchBatch(context.Background(), "X", device.KindEcho, time.Now())
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("retries on 5xx", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, "flaky", http.StatusInternalServerError)
				return
			}
			w.Write([]byte("[]"))
		}))
		defer srv.Close()

		c := NewClient("", srv.URL, WithRetries(2, time.Millisecond))
		if _, err := c.FetchBatch(context.Background(), "X", device.KindEcho, time.Now()); err != nil {
			t.Fatalf("FetchBatch after retry: %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})
}

func TestFormatInstant(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	in := time.Date(2023, 6, 1, 13, 30, 0, 0, loc)
	if got := FormatInstant(in); got != "2023-06-01T12:30:00Z" {
		t.Errorf("FormatInstant = %q, want 2023-06-01T12:30:00Z", got)
	}
}
