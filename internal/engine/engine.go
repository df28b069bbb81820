package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradascent/nautilus-trader/internal/cache"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/msgbus"
	"github.com/gradascent/nautilus-trader/internal/synthetic"
)

// Config holds the engine's fixed settings. It is copied at
// construction and never mutated afterward.
type Config struct {
	TimeBarsBuildWithNoUpdates bool
	TimeBarsTimestampOnClose  bool
	// TimeBarsIntervalType is "left_open", "right_open" or "both_open".
	TimeBarsIntervalType string
	ValidateDataSequence bool
	BufferDeltas         bool
	ExternalClients      []identifiers.ClientId
	Debug                bool
}

func DefaultConfig() Config {
	return Config{
		TimeBarsIntervalType: "left_open",
		ValidateDataSequence: true,
		BufferDeltas:         true,
	}
}

// Clock supplies the current time as Unix nanoseconds, abstracted so
// tests can inject a deterministic source.
type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixNano() }

// Engine is the market-data routing and dispatch engine.
// It owns the adapter registry, the synthetic feed registry, the
// in-progress delta buffers, and handles to the shared Cache and
// MessageBus. Every public entry point acquires the Guard for its
// duration.
type Engine struct {
	guard *Guard
	clock Clock
	cache cache.Cache
	bus   *msgbus.Bus

	switchboard *msgbus.Switchboard
	synthetics  *synthetic.Registry
	registry    *Registry

	config Config
	logger *slog.Logger

	deltaBuffers map[identifiers.InstrumentId][]data.OrderBookDelta
}

// New constructs an Engine. clock may be nil (defaults to SystemClock);
// logger may be nil (defaults to slog.Default()).
func New(clock Clock, c cache.Cache, bus *msgbus.Bus, cfg Config, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		guard:        NewGuard(),
		clock:        clock,
		cache:        c,
		bus:          bus,
		switchboard:  msgbus.NewSwitchboard(),
		synthetics:   synthetic.NewRegistry(),
		registry:     NewRegistry(),
		config:       cfg,
		logger:       logger,
		deltaBuffers: make(map[identifiers.InstrumentId][]data.OrderBookDelta),
	}
}

func (e *Engine) ctx() context.Context { return context.Background() }

// Cache exposes the engine's cache handle to callers that need to read
// authoritative state directly.
func (e *Engine) Cache() cache.Cache { return e.cache }

// RegisterHandlers wires the engine's command and request handlers onto
// the bus under their well-known endpoint ids.
func (e *Engine) RegisterHandlers() error {
	if err := e.bus.Register(msgbus.EndpointDataEngineExecute, e.SubscriptionCommandHandler); err != nil {
		return err
	}
	return e.bus.Register(msgbus.EndpointDataEngineRequest, e.DataRequestHandler)
}

// RegisterClient registers adapter under its client_id. If routing is
// non-nil, the adapter also becomes the routing-map target for that
// Venue. A duplicate client_id is logged as an error and the new adapter
// replaces the earlier one.
func (e *Engine) RegisterClient(adapter ClientAdapter, routing *identifiers.Venue) {
	release := e.guard.Acquire()
	defer release()
	if _, exists := e.registry.GetByClientId(adapter.ClientId()); exists {
		e.logger.Error("registry: client_id already registered, replacing adapter", "client_id", adapter.ClientId().String())
	}
	e.registry.Register(adapter, routing)
}

// DeregisterClient removes adapter and its routing entries. Idempotent.
func (e *Engine) DeregisterClient(clientId identifiers.ClientId) {
	release := e.guard.Acquire()
	defer release()
	if !e.registry.Deregister(clientId) {
		e.logger.Warn("registry: deregistering unknown client_id", "client_id", clientId.String())
	}
}

// SetDefaultClient sets the fallback adapter used by Get when neither a
// direct client_id match nor routing resolves one.
func (e *Engine) SetDefaultClient(adapter ClientAdapter) {
	release := e.guard.Acquire()
	defer release()
	e.registry.SetDefault(adapter)
}

// GetClient resolves an adapter the same way the engine's internals do:
// direct client_id match, then routing, then default.
func (e *Engine) GetClient(clientId identifiers.ClientId, venue identifiers.Venue) (ClientAdapter, bool) {
	release := e.guard.Acquire()
	defer release()
	return e.registry.Get(clientId, venue)
}

// RegisteredClients returns the ids of all registered adapters, in
// registration order.
func (e *Engine) RegisteredClients() []identifiers.ClientId {
	release := e.guard.Acquire()
	defer release()
	all := e.registry.All()
	ids := make([]identifiers.ClientId, 0, len(all))
	for _, a := range all {
		ids = append(ids, a.ClientId())
	}
	return ids
}

// RegisterSynthetic adds syn to the Synthetic Feed Registry.
func (e *Engine) RegisterSynthetic(syn *synthetic.Instrument) error {
	release := e.guard.Acquire()
	defer release()
	return e.synthetics.Register(syn)
}
