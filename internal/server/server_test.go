package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/store"
)

type fakeStorage struct {
	pingErr error
	devices []store.DeviceInfo
	bounds  store.DataBounds
	points  []map[string]any

	lastKind   device.Kind
	lastEUI    string
	lastQuery  store.DataQuery
	lastOffset int
}

func (f *fakeStorage) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStorage) Devices(ctx context.Context, kind device.Kind) ([]store.DeviceInfo, error) {
	f.lastKind = kind
	return f.devices, nil
}

func (f *fakeStorage) Bounds(ctx context.Context, kind device.Kind, eui string) (store.DataBounds, error) {
	f.lastKind, f.lastEUI = kind, eui
	if f.bounds.RecordCount == 0 {
		return store.DataBounds{}, store.ErrNoData
	}
	return f.bounds, nil
}

func (f *fakeStorage) Data(ctx context.Context, kind device.Kind, eui string, dq store.DataQuery) ([]map[string]any, error) {
	f.lastKind, f.lastEUI, f.lastQuery = kind, eui, dq
	return f.points, nil
}

func (f *fakeStorage) DataChunk(ctx context.Context, kind device.Kind, eui string, dq store.DataQuery, offset int) (store.DataChunk, error) {
	f.lastKind, f.lastEUI, f.lastQuery, f.lastOffset = kind, eui, dq, offset
	limit := dq.Limit
	if limit <= 0 {
		limit = store.DefaultChunkLimit
	}
	page := f.points
	if offset < len(page) {
		page = page[offset:]
	} else {
		page = nil
	}
	if len(page) > limit {
		page = page[:limit]
	}
	return store.DataChunk{Total: len(f.points), Offset: offset, Limit: limit, Points: page}, nil
}

func (f *fakeStorage) Latest(ctx context.Context, kind device.Kind, eui string) (map[string]any, error) {
	f.lastKind, f.lastEUI = kind, eui
	if len(f.points) == 0 {
		return nil, store.ErrNoData
	}
	return f.points[len(f.points)-1], nil
}

func get(t *testing.T, storage Storage, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	New(storage, nil).Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		w := get(t, &fakeStorage{}, "/health")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body map[string]string
		json.NewDecoder(w.Body).Decode(&body)
		if body["status"] != "healthy" {
			t.Errorf("status field = %q", body["status"])
		}
	})

	t.Run("database down", func(t *testing.T) {
		w := get(t, &fakeStorage{pingErr: errors.New("refused")}, "/health")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}

func TestDevices(t *testing.T) {
	fake := &fakeStorage{devices: []store.DeviceInfo{
		{DeviceEUI: "A1", DevName: "Burnbank", Type: "Hygro"},
	}}

	w := get(t, fake, "/devices/Hygro")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if fake.lastKind != device.KindHygro {
		t.Errorf("queried kind = %v, want Hygro", fake.lastKind)
	}

	var devices []store.DeviceInfo
	json.NewDecoder(w.Body).Decode(&devices)
	if len(devices) != 1 || devices[0].DeviceEUI != "A1" {
		t.Errorf("unexpected devices payload: %+v", devices)
	}
}

func TestDevicesUnknownType(t *testing.T) {
	w := get(t, &fakeStorage{}, "/devices/Sprinkler")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDevicesEmptyListNotNull(t *testing.T) {
	w := get(t, &fakeStorage{}, "/devices/Echo")
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestBounds(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fake := &fakeStorage{bounds: store.DataBounds{
			StartTS:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			EndTS:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			RecordCount: 420,
		}}
		w := get(t, fake, "/data-bounds/Echo/70B3D549")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body map[string]any
		json.NewDecoder(w.Body).Decode(&body)
		if body["recordCount"] != float64(420) {
			t.Errorf("recordCount = %v", body["recordCount"])
		}
		if fake.lastEUI != "70B3D549" {
			t.Errorf("queried EUI = %q", fake.lastEUI)
		}
	})

	t.Run("no data", func(t *testing.T) {
		w := get(t, &fakeStorage{}, "/data-bounds/Echo/70B3D549")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestData(t *testing.T) {
	fake := &fakeStorage{points: []map[string]any{
		{"timestamp": "2023-06-01T12:00:00Z", "deviceEUI": "A1", "waterLevel": 305.0},
	}}

	w := get(t, fake, "/data/Echo/A1?start_date=2023-06-01&end_date=2023-06-30&limit=100")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if fake.lastQuery.Limit != 100 {
		t.Errorf("limit = %d, want 100", fake.lastQuery.Limit)
	}
	if fake.lastQuery.Start == nil || !fake.lastQuery.Start.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want start of 2023-06-01", fake.lastQuery.Start)
	}
	if fake.lastQuery.End == nil || !fake.lastQuery.End.Equal(time.Date(2023, 6, 30, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("end = %v, want end of 2023-06-30", fake.lastQuery.End)
	}

	var body struct {
		DeviceType  string           `json:"deviceType"`
		DeviceEUI   string           `json:"deviceEUI"`
		RecordCount int              `json:"recordCount"`
		Data        []map[string]any `json:"data"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	if body.DeviceType != "Echo" || body.RecordCount != 1 || len(body.Data) != 1 {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestDataBadQuery(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"bad start date", "/data/Echo/A1?start_date=June"},
		{"bad end date", "/data/Echo/A1?end_date=2023-13-99"},
		{"bad limit", "/data/Echo/A1?limit=-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(t, &fakeStorage{}, tt.path); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestDataChunked(t *testing.T) {
	fake := &fakeStorage{points: []map[string]any{
		{"timestamp": "2023-06-01T12:00:00Z", "waterLevel": 301.0},
		{"timestamp": "2023-06-01T13:00:00Z", "waterLevel": 302.0},
		{"timestamp": "2023-06-01T14:00:00Z", "waterLevel": 303.0},
	}}

	type chunkBody struct {
		TotalRecords int              `json:"totalRecords"`
		Offset       int              `json:"offset"`
		RecordCount  int              `json:"recordCount"`
		HasMore      bool             `json:"hasMore"`
		Data         []map[string]any `json:"data"`
	}

	t.Run("first page has more", func(t *testing.T) {
		w := get(t, fake, "/data-chunked/Echo/A1?limit=2")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body chunkBody
		json.NewDecoder(w.Body).Decode(&body)
		if body.TotalRecords != 3 || body.RecordCount != 2 || !body.HasMore {
			t.Errorf("unexpected chunk: %+v", body)
		}
	})

	t.Run("last page exhausts", func(t *testing.T) {
		w := get(t, fake, "/data-chunked/Echo/A1?limit=2&offset=2")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if fake.lastOffset != 2 {
			t.Errorf("offset = %d, want 2", fake.lastOffset)
		}
		var body chunkBody
		json.NewDecoder(w.Body).Decode(&body)
		if body.RecordCount != 1 || body.HasMore {
			t.Errorf("unexpected chunk: %+v", body)
		}
		if body.Data[0]["waterLevel"] != 303.0 {
			t.Errorf("wrong page contents: %+v", body.Data)
		}
	})

	t.Run("negative offset rejected", func(t *testing.T) {
		if w := get(t, fake, "/data-chunked/Echo/A1?offset=-1"); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		if w := get(t, fake, "/data-chunked/Sprinkler/A1"); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestLatest(t *testing.T) {
	fake := &fakeStorage{points: []map[string]any{
		{"timestamp": "2023-06-01T12:00:00Z", "waterLevel": 305.0},
	}}
	w := get(t, fake, "/data/Echo/A1/latest")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var point map[string]any
	json.NewDecoder(w.Body).Decode(&point)
	if point["waterLevel"] != 305.0 {
		t.Errorf("waterLevel = %v", point["waterLevel"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(&fakeStorage{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.Handler([]string{"*"}).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
