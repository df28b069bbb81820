package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultWSURL              = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultCacheBackend       = "memory"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultStaleAfter         = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 10000
	DefaultSyncInterval       = 5 * time.Minute
	DefaultPageSize           = 1000
	DefaultInitialLoadTimeout = 5 * time.Minute
	DefaultIntervalType       = "left_open"
)

func (c *EngineConfig) applyDefaults() {
	// Engine defaults
	if c.Engine.TimeBarsIntervalType == "" {
		c.Engine.TimeBarsIntervalType = DefaultIntervalType
	}

	// Adapter defaults
	if c.Adapter.RestURL == "" {
		c.Adapter.RestURL = DefaultRestURL
	}
	if c.Adapter.WSURL == "" {
		c.Adapter.WSURL = DefaultWSURL
	}
	if c.Adapter.Timeout == 0 {
		c.Adapter.Timeout = DefaultAPITimeout
	}
	if c.Adapter.MaxRetries == 0 {
		c.Adapter.MaxRetries = DefaultMaxRetries
	}

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.BatchSize == 0 {
		c.Cache.BatchSize = DefaultBatchSize
	}
	if c.Cache.FlushInterval == 0 {
		c.Cache.FlushInterval = DefaultFlushInterval
	}
	applyDBDefaults(&c.Cache.Postgres)

	// Connections defaults
	if c.Connections.ReconnectBaseDelay == 0 {
		c.Connections.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connections.ReconnectMaxDelay == 0 {
		c.Connections.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Connections.PingInterval == 0 {
		c.Connections.PingInterval = DefaultPingInterval
	}
	if c.Connections.StaleAfter == 0 {
		c.Connections.StaleAfter = DefaultStaleAfter
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connections.BufferSize == 0 {
		c.Connections.BufferSize = DefaultBufferSize
	}

	// Discovery defaults
	if c.Discovery.Interval == 0 {
		c.Discovery.Interval = DefaultSyncInterval
	}
	if c.Discovery.PageSize == 0 {
		c.Discovery.PageSize = DefaultPageSize
	}
	if c.Discovery.InitialLoadTimeout == 0 {
		c.Discovery.InitialLoadTimeout = DefaultInitialLoadTimeout
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
