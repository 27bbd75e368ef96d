package config

import (
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

// CollectorConfig is the root configuration for a collector instance.
type CollectorConfig struct {
	API        APIConfig        `yaml:"api"`
	Collection CollectionConfig `yaml:"collection"`
	Devices    DevicesConfig    `yaml:"devices"`
	Database   DBConfig         `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Export     ExportConfig     `yaml:"export"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// APIConfig holds the telemetry backend endpoints.
type APIConfig struct {
	BoundsURL     string        `yaml:"bounds_url"`
	FetchURL      string        `yaml:"fetch_url"`
	BoundsTimeout time.Duration `yaml:"bounds_timeout"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
}

// CollectionConfig holds per-device history collection policy.
type CollectionConfig struct {
	// MaxDays caps the collection window counted back from the end of a
	// device's history. Zero collects the full range.
	MaxDays        int              `yaml:"max_days"`
	BatchDelay     time.Duration    `yaml:"batch_delay"`
	OnBadTimestamp timeparse.Policy `yaml:"on_bad_timestamp"`
}

// DevicesConfig locates the device catalog.
type DevicesConfig struct {
	File string `yaml:"file"`
}

// DBConfig holds the PostgreSQL connection for collected telemetry.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ServerConfig holds the data API server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
