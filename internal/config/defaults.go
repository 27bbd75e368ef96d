package config

import (
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

// Default values for optional configuration fields.
const (
	DefaultBoundsURL      = "https://a8p8m605b5.execute-api.eu-west-2.amazonaws.com/sepa_iot_device_date_bounds"
	DefaultFetchURL       = "https://oujshf1m2h.execute-api.eu-west-2.amazonaws.com/tekh_dataFetch"
	DefaultBoundsTimeout  = 10 * time.Second
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxRetries     = 2
	DefaultRetryBackoff   = 1 * time.Second
	DefaultBatchDelay     = 100 * time.Millisecond
	DefaultDevicesFile    = "devices.json"
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultServerPort     = 8080
	DefaultExportDir      = "exports"
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
	DefaultOnBadTimestamp = timeparse.PolicySubstituteNow
)

func (c *CollectorConfig) applyDefaults() {
	// API defaults
	if c.API.BoundsURL == "" {
		c.API.BoundsURL = DefaultBoundsURL
	}
	if c.API.FetchURL == "" {
		c.API.FetchURL = DefaultFetchURL
	}
	if c.API.BoundsTimeout == 0 {
		c.API.BoundsTimeout = DefaultBoundsTimeout
	}
	if c.API.FetchTimeout == 0 {
		c.API.FetchTimeout = DefaultFetchTimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Collection defaults
	if c.Collection.BatchDelay == 0 {
		c.Collection.BatchDelay = DefaultBatchDelay
	}
	if c.Collection.OnBadTimestamp == "" {
		c.Collection.OnBadTimestamp = DefaultOnBadTimestamp
	}

	// Devices defaults
	if c.Devices.File == "" {
		c.Devices.File = DefaultDevicesFile
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	// Export defaults
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
