// Package server exposes collected telemetry over a small JSON API for
// dashboards and download tooling.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/parth2411/sepa-iot-platform/internal/device"
	"github.com/parth2411/sepa-iot-platform/internal/store"
)

// Storage is the store surface the server reads from.
type Storage interface {
	Ping(ctx context.Context) error
	Devices(ctx context.Context, kind device.Kind) ([]store.DeviceInfo, error)
	Bounds(ctx context.Context, kind device.Kind, eui string) (store.DataBounds, error)
	Data(ctx context.Context, kind device.Kind, eui string, dq store.DataQuery) ([]map[string]any, error)
	DataChunk(ctx context.Context, kind device.Kind, eui string, dq store.DataQuery, offset int) (store.DataChunk, error)
	Latest(ctx context.Context, kind device.Kind, eui string) (map[string]any, error)
}

// Server serves the telemetry read API.
type Server struct {
	storage Storage
	logger  *slog.Logger
}

// New creates a Server over the given storage.
func New(storage Storage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{storage: storage, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/devices/{type}", s.handleDevices).Methods("GET")
	r.HandleFunc("/data-bounds/{type}/{eui}", s.handleBounds).Methods("GET")
	r.HandleFunc("/data/{type}/{eui}", s.handleData).Methods("GET")
	r.HandleFunc("/data-chunked/{type}/{eui}", s.handleDataChunked).Methods("GET")
	r.HandleFunc("/data/{type}/{eui}/latest", s.handleLatest).Methods("GET")
	return r
}

// Handler wraps the router with CORS for browser front ends.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.Router())
}
