package discovery

import (
	"context"
	"time"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/restclient"
)

// initialSync fetches the venue's tradeable instruments on startup.
// Open and not-yet-opened instruments are both loaded; settled/closed
// history is skipped.
func (s *Service) initialSync(ctx context.Context) error {
	if err := s.checkVenueStatus(ctx); err != nil {
		return err
	}

	s.logger.Info("starting initial instrument sync")
	start := time.Now()

	instruments, err := s.fetchInstruments(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, ins := range instruments {
		s.known[ins.InstrumentId] = ins
	}
	s.lastSyncAt = time.Now()
	s.mu.Unlock()

	s.deliver(instruments)

	s.logger.Info("initial sync complete",
		"instruments", len(instruments),
		"duration", time.Since(start),
	)

	return nil
}

// checkVenueStatus verifies the venue is reachable and operational.
func (s *Service) checkVenueStatus(ctx context.Context) error {
	status, err := s.rest.GetVenueStatus(ctx)
	if err != nil {
		return err
	}

	if !status.ExchangeActive {
		s.logger.Warn("venue is not active",
			"estimated_resume", status.EstimatedResumeTime,
		)
		// Continue anyway; reconciliation picks up instruments once the
		// venue comes back.
	}

	return nil
}

// reconciliationLoop periodically re-fetches instruments and delivers
// anything new or changed.
func (s *Service) reconciliationLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile fetches the current instrument set and delivers the
// definitions that are new or differ from the last-seen state.
func (s *Service) reconcile(ctx context.Context) {
	start := time.Now()

	instruments, err := s.fetchInstruments(ctx)
	if err != nil {
		s.logger.Error("reconciliation failed fetching instruments", "err", err)
		return
	}

	var changed []data.Instrument

	s.mu.Lock()
	for _, ins := range instruments {
		existing, ok := s.known[ins.InstrumentId]
		if ok && existing.PriceIncrement == ins.PriceIncrement && existing.SizeIncrement == ins.SizeIncrement {
			continue
		}
		s.known[ins.InstrumentId] = ins
		changed = append(changed, ins)
	}
	s.lastSyncAt = time.Now()
	s.mu.Unlock()

	s.deliver(changed)

	if len(changed) > 0 {
		s.logger.Info("reconciliation found changes",
			"changed", len(changed),
			"duration", time.Since(start),
		)
	} else {
		s.logger.Debug("reconciliation complete",
			"instruments", len(instruments),
			"duration", time.Since(start),
		)
	}
}

// fetchInstruments pulls open and unopened instruments and converts
// them to the engine's Instrument type.
func (s *Service) fetchInstruments(ctx context.Context) ([]data.Instrument, error) {
	open, err := s.rest.GetAllInstruments(ctx, restclient.GetInstrumentsOptions{
		Status: "open",
		Limit:  s.cfg.PageSize,
	})
	if err != nil {
		return nil, err
	}

	unopened, err := s.rest.GetAllInstruments(ctx, restclient.GetInstrumentsOptions{
		Status: "unopened",
		Limit:  s.cfg.PageSize,
	})
	if err != nil {
		return nil, err
	}

	now := s.nowNanos()
	out := make([]data.Instrument, 0, len(open)+len(unopened))
	seen := make(map[identifiers.InstrumentId]bool, len(open)+len(unopened))
	for _, wire := range append(open, unopened...) {
		ins := wire.ToData(s.venue, now)
		if seen[ins.InstrumentId] {
			continue
		}
		seen[ins.InstrumentId] = true
		out = append(out, ins)
	}

	return out, nil
}
