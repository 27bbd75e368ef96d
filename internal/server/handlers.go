package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/store"
	"github.com/parth2411/sepa-iot-platform/internal/version"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "SEPA IoT telemetry API",
		"version": version.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "database connection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.pathKind(w, r)
	if !ok {
		return
	}

	devices, err := s.storage.Devices(r.Context(), kind)
	if err != nil {
		s.logger.Error("device listing failed", "type", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if devices == nil {
		devices = []store.DeviceInfo{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.pathKind(w, r)
	if !ok {
		return
	}
	eui := mux.Vars(r)["eui"]

	bounds, err := s.storage.Bounds(r.Context(), kind, eui)
	if errors.Is(err, store.ErrNoData) {
		writeError(w, http.StatusNotFound, "no data found for this device")
		return
	}
	if err != nil {
		s.logger.Error("bounds query failed", "type", kind, "device", eui, "error", err)
		writeError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	writeJSON(w, http.StatusOK, bounds)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.pathKind(w, r)
	if !ok {
		return
	}
	eui := mux.Vars(r)["eui"]

	dq, err := parseDataQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.storage.Data(r.Context(), kind, eui, dq)
	if err != nil {
		s.logger.Error("data query failed", "type", kind, "device", eui, "error", err)
		writeError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if points == nil {
		points = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceType":  kind.String(),
		"deviceEUI":   eui,
		"recordCount": len(points),
		"data":        points,
	})
}

// handleDataChunked serves pages of a large window so clients don't have
// to hold a whole multi-year history in one response.
func (s *Server) handleDataChunked(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.pathKind(w, r)
	if !ok {
		return
	}
	eui := mux.Vars(r)["eui"]

	dq, err := parseDataQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
	}

	chunk, err := s.storage.DataChunk(r.Context(), kind, eui, dq, offset)
	if err != nil {
		s.logger.Error("chunked data query failed", "type", kind, "device", eui, "error", err)
		writeError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if chunk.Points == nil {
		chunk.Points = []map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceType":   kind.String(),
		"deviceEUI":    eui,
		"totalRecords": chunk.Total,
		"offset":       chunk.Offset,
		"limit":        chunk.Limit,
		"recordCount":  len(chunk.Points),
		"hasMore":      chunk.Offset+len(chunk.Points) < chunk.Total,
		"data":         chunk.Points,
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.pathKind(w, r)
	if !ok {
		return
	}
	eui := mux.Vars(r)["eui"]

	point, err := s.storage.Latest(r.Context(), kind, eui)
	if errors.Is(err, store.ErrNoData) {
		writeError(w, http.StatusNotFound, "no data found for this device")
		return
	}
	if err != nil {
		s.logger.Error("latest query failed", "type", kind, "device", eui, "error", err)
		writeError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	writeJSON(w, http.StatusOK, point)
}

// pathKind resolves the {type} path segment, answering 400 for unknown
// device families.
func (s *Server) pathKind(w http.ResponseWriter, r *http.Request) (device.Kind, bool) {
	name := mux.Vars(r)["type"]
	kind, err := device.ParseKind(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid device type: "+name)
		return 0, false
	}
	return kind, true
}

// parseDataQuery reads the optional start_date, end_date (YYYY-MM-DD,
// inclusive whole days) and limit query parameters.
func parseDataQuery(r *http.Request) (store.DataQuery, error) {
	var dq store.DataQuery
	q := r.URL.Query()

	if v := q.Get("start_date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return dq, errors.New("start_date must be YYYY-MM-DD")
		}
		dq.Start = &day
	}
	if v := q.Get("end_date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return dq, errors.New("end_date must be YYYY-MM-DD")
		}
		end := day.Add(24*time.Hour - time.Second)
		dq.End = &end
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return dq, errors.New("limit must be a positive integer")
		}
		dq.Limit = n
	}
	return dq, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
