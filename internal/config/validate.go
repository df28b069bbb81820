package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *EngineConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Engine.TimeBarsIntervalType {
	case "left_open", "right_open", "both_open":
	default:
		return fmt.Errorf("engine.time_bars_interval_type must be left_open, right_open or both_open, got %q", c.Engine.TimeBarsIntervalType)
	}

	if c.Adapter.ClientID == "" {
		return errors.New("adapter.client_id is required")
	}
	if c.Adapter.Venue == "" {
		return errors.New("adapter.venue is required")
	}

	switch c.Cache.Backend {
	case "memory":
	case "postgres":
		if err := c.Cache.Postgres.validate("cache.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cache.backend must be memory or postgres, got %q", c.Cache.Backend)
	}

	if c.Cache.BatchSize < 1 {
		return errors.New("cache.batch_size must be >= 1")
	}

	if c.Connections.BufferSize < 1 {
		return errors.New("connections.buffer_size must be >= 1")
	}
	if c.Connections.ReconnectBaseDelay > c.Connections.ReconnectMaxDelay {
		return fmt.Errorf("connections.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)",
			c.Connections.ReconnectBaseDelay, c.Connections.ReconnectMaxDelay)
	}

	if c.Discovery.PageSize < 1 {
		return errors.New("discovery.page_size must be >= 1")
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
