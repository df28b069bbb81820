// Package discovery keeps the engine's instrument reference data fresh:
// an initial blocking sync at startup, then a periodic reconciliation
// loop, both fetching definitions over REST and delivering them to the
// engine as InstrumentAny data responses so they flow through the same
// bulk-cache-insert path as any adapter-originated response.
package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
	"github.com/gradascent/nautilus-trader/internal/restclient"
)

// Config holds discovery service configuration.
type Config struct {
	Interval           time.Duration
	PageSize           int
	InitialLoadTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:           5 * time.Minute,
		PageSize:           1000,
		InitialLoadTimeout: 5 * time.Minute,
	}
}

// Sink receives each batch of refreshed instrument definitions,
// typically the engine's Response entry point.
type Sink func(messages.DataResponse)

// Service is the instrument reference-data sync service.
type Service struct {
	cfg      Config
	rest     *restclient.Client
	clientId identifiers.ClientId
	venue    identifiers.Venue
	sink     Sink
	logger   *slog.Logger

	// nowNanos is the ingress clock, injectable for tests.
	nowNanos func() int64

	mu         sync.Mutex
	known      map[identifiers.InstrumentId]data.Instrument
	lastSyncAt time.Time

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New creates a discovery Service. sink must not be nil; it is invoked on
// the goroutine that calls Start for the initial sync and on the
// reconciliation goroutine afterward, never concurrently with itself.
func New(cfg Config, rest *restclient.Client, clientId identifiers.ClientId, venue identifiers.Venue, sink Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	return &Service{
		cfg:      cfg,
		rest:     rest,
		clientId: clientId,
		venue:    venue,
		sink:     sink,
		logger:   logger,
		nowNanos: func() int64 { return time.Now().UnixNano() },
		known:    make(map[identifiers.InstrumentId]data.Instrument),
	}
}

// Start runs the initial sync (blocking, bounded by InitialLoadTimeout)
// and then launches the background reconciliation loop.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	initCtx := runCtx
	if s.cfg.InitialLoadTimeout > 0 {
		var initCancel context.CancelFunc
		initCtx, initCancel = context.WithTimeout(runCtx, s.cfg.InitialLoadTimeout)
		defer initCancel()
	}

	if err := s.initialSync(initCtx); err != nil {
		cancel()
		return err
	}

	s.group, runCtx = errgroup.WithContext(runCtx)
	s.group.Go(func() error {
		s.reconciliationLoop(runCtx)
		return nil
	})

	s.logger.Info("discovery started",
		"client_id", s.clientId.String(),
		"venue", s.venue.String(),
		"instruments", len(s.known),
	)

	return nil
}

// Stop gracefully shuts down the reconciliation loop.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.group == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("discovery stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Known returns the last-seen definition for id.
func (s *Service) Known(id identifiers.InstrumentId) (data.Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ins, ok := s.known[id]
	return ins, ok
}

// KnownCount returns how many instruments the service has seen.
func (s *Service) KnownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known)
}

// LastSyncAt returns when the most recent sync completed.
func (s *Service) LastSyncAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncAt
}

// deliver packages instruments as an InstrumentAny DataResponse and
// hands them to the sink.
func (s *Service) deliver(instruments []data.Instrument) {
	if len(instruments) == 0 {
		return
	}
	s.sink(messages.DataResponse{
		CorrelationId: uuid.New(),
		DataType:      messages.DataType{TypeName: "InstrumentAny"},
		Payload:       messages.NewInstrumentsPayload(instruments),
		TsInit:        s.nowNanos(),
	})
}
