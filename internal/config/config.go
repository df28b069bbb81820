package config

import "time"

// EngineConfig is the root configuration for an engine instance.
type EngineConfig struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Engine      EngineOptions     `yaml:"engine"`
	Adapter     AdapterConfig     `yaml:"adapter"`
	Cache       CacheConfig       `yaml:"cache"`
	Connections ConnectionsConfig `yaml:"connections"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
}

// InstanceConfig identifies this engine instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
	AZ string `yaml:"az"`
}

// EngineOptions are the engine's data-pipeline settings. They become
// immutable once the engine is constructed; the process never re-reads
// this struct after startup.
type EngineOptions struct {
	TimeBarsBuildWithNoUpdates bool     `yaml:"time_bars_build_with_no_updates"`
	TimeBarsTimestampOnClose   bool     `yaml:"time_bars_timestamp_on_close"`
	TimeBarsIntervalType       string   `yaml:"time_bars_interval_type"` // left_open, right_open, both_open
	ValidateDataSequence       bool     `yaml:"validate_data_sequence"`
	BufferDeltas               bool     `yaml:"buffer_deltas"`
	ExternalClients            []string `yaml:"external_clients"`
	Debug                      bool     `yaml:"debug"`
}

// AdapterConfig holds the reference venue adapter's settings.
type AdapterConfig struct {
	ClientID       string        `yaml:"client_id"`
	Venue          string        `yaml:"venue"`
	RestURL        string        `yaml:"rest_url"`
	WSURL          string        `yaml:"ws_url"`
	APIKey         string        `yaml:"api_key"`          // API key ID for the venue's access-key header
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is "memory" or "postgres".
	Backend       string        `yaml:"backend"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds settings for a single database connection pool.
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

// ConnectionsConfig holds WebSocket connection tuning.
type ConnectionsConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	StaleAfter         time.Duration `yaml:"stale_after"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// DiscoveryConfig holds instrument reference-data sync settings.
type DiscoveryConfig struct {
	Interval           time.Duration `yaml:"interval"`
	PageSize           int           `yaml:"page_size"`
	InitialLoadTimeout time.Duration `yaml:"initial_load_timeout"`
}
