package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *CollectorConfig) Validate() error {
	if c.API.BoundsURL == "" {
		return errors.New("api.bounds_url is required")
	}
	if c.API.FetchURL == "" {
		return errors.New("api.fetch_url is required")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if c.Collection.MaxDays < 0 {
		return errors.New("collection.max_days must be >= 0")
	}
	if c.Collection.BatchDelay < 0 {
		return errors.New("collection.batch_delay must be >= 0")
	}
	if !c.Collection.OnBadTimestamp.Valid() {
		return fmt.Errorf("collection.on_bad_timestamp must be %q or %q, got %q",
			"substitute-now", "drop", c.Collection.OnBadTimestamp)
	}

	if c.Devices.File == "" {
		return errors.New("devices.file is required")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
