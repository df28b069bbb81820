package engine

import (
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/synthetic"
)

// Per-kind handlers. Each handler validates where
// applicable, updates the cache (logging and continuing on failure
// rather than aborting), feeds the synthetic feed registry, and
// publishes on the appropriate topic. These are unexported and never
// acquire the Guard themselves — they recurse into each other (e.g. a
// synthetic quote derived from a real one) without risking the
// nested-borrow panic that Process/Execute/Response/RequestData guard
// against at the engine's public boundary.

func (e *Engine) handleQuote(q data.QuoteTick) {
	if err := e.cache.AddQuote(e.ctx(), q); err != nil {
		e.logger.Error("handler: quote cache insert failed", "instrument_id", q.InstrumentId.String(), "error", err)
	}
	e.evaluateSynthetics(q.InstrumentId, synthetic.PriceTypeQuote)
	e.bus.Publish(e.switchboard.Quotes(q.InstrumentId), q)
}

func (e *Engine) handleTrade(t data.TradeTick) {
	if err := e.cache.AddTrade(e.ctx(), t); err != nil {
		e.logger.Error("handler: trade cache insert failed", "instrument_id", t.InstrumentId.String(), "error", err)
	}
	e.evaluateSynthetics(t.InstrumentId, synthetic.PriceTypeTrade)
	e.bus.Publish(e.switchboard.Trades(t.InstrumentId), t)
}

func (e *Engine) handleBar(b data.Bar) {
	if e.config.ValidateDataSequence {
		if last, ok := e.cache.LastBar(e.ctx(), b.BarType); ok {
			if b.TsEvent < last.TsEvent {
				e.logger.Warn("handler: bar ts_event regression, dropped", "bar_type", b.BarType.String())
				return
			}
			if b.TsInit < last.TsInit {
				e.logger.Warn("handler: bar ts_init regression, dropped", "bar_type", b.BarType.String())
				return
			}
		}
	}

	if err := e.cache.AddBar(e.ctx(), b); err != nil {
		e.logger.Error("handler: bar cache insert failed", "bar_type", b.BarType.String(), "error", err)
	}
	e.bus.Publish(e.switchboard.Bars(b.BarType), b)
}

func (e *Engine) handleDelta(d data.OrderBookDelta) {
	if e.config.BufferDeltas {
		// Book application and publication both happen at flush, so the
		// batch lands atomically: one Deltas event per terminal flag, and
		// the buffer is empty afterward.
		e.deltaBuffers[d.InstrumentId] = append(e.deltaBuffers[d.InstrumentId], d)
		if d.IsLast() {
			buffered := e.deltaBuffers[d.InstrumentId]
			delete(e.deltaBuffers, d.InstrumentId)
			e.handleDeltas(data.OrderBookDeltas{
				InstrumentId: d.InstrumentId,
				Deltas:       buffered,
				TsEvent:      buffered[len(buffered)-1].TsEvent,
				TsInit:       buffered[len(buffered)-1].TsInit,
			})
		}
		return
	}

	// Unbuffered: apply and publish fragment-by-fragment.
	e.applyDeltaToBook(d)
	e.bus.Publish(e.switchboard.Deltas(d.InstrumentId), d)
}

func (e *Engine) handleDeltas(dd data.OrderBookDeltas) {
	for _, d := range dd.Deltas {
		e.applyDeltaToBook(d)
	}
	e.bus.Publish(e.switchboard.Deltas(dd.InstrumentId), dd)
}

func (e *Engine) handleDepth10(dep data.OrderBookDepth10) {
	if e.cache.HasBook(dep.InstrumentId) {
		if err := e.cache.Book(dep.InstrumentId).ApplyDepth10(dep); err != nil {
			e.logger.Error("handler: depth10 apply failed", "instrument_id", dep.InstrumentId.String(), "error", err)
		}
	}
	e.bus.Publish(e.switchboard.Depth(dep.InstrumentId), dep)
}

// applyDeltaToBook applies d to the managed book for its instrument, if
// one is already being managed. Look up, then apply or skip — the
// engine never starts managing a book implicitly.
func (e *Engine) applyDeltaToBook(d data.OrderBookDelta) {
	if !e.cache.HasBook(d.InstrumentId) {
		return
	}
	if err := e.cache.Book(d.InstrumentId).ApplyDelta(d); err != nil {
		e.logger.Error("handler: delta apply failed", "instrument_id", d.InstrumentId.String(), "error", err)
	}
}

// evaluateSynthetics recomputes every synthetic dependent on component
// for priceType. A dependent is skipped if any of its legs has no
// cached price yet: a synthetic only emits once every leg is fresh.
// Recursion is bounded to one level because synthetic.Registry.Register
// rejects a synthetic whose component is itself a synthetic.
func (e *Engine) evaluateSynthetics(component identifiers.InstrumentId, priceType synthetic.PriceType) {
	deps := e.synthetics.DependentsOf(component, priceType)
	for _, syn := range deps {
		legs := make(map[identifiers.InstrumentId]float64, len(syn.Components))
		complete := true
		for _, c := range syn.Components {
			price, ok := e.legPrice(c, priceType)
			if !ok {
				complete = false
				break
			}
			legs[c] = price
		}
		if !complete {
			continue
		}

		value, ok := syn.Evaluate(legs)
		if !ok {
			continue
		}

		now := e.clock.Now()
		if priceType == synthetic.PriceTypeQuote {
			e.handleQuote(data.QuoteTick{InstrumentId: syn.InstrumentId, BidPrice: value, AskPrice: value, TsEvent: now, TsInit: now})
		} else {
			e.handleTrade(data.TradeTick{InstrumentId: syn.InstrumentId, Price: value, TsEvent: now, TsInit: now})
		}
	}
}

func (e *Engine) legPrice(id identifiers.InstrumentId, priceType synthetic.PriceType) (float64, bool) {
	if priceType == synthetic.PriceTypeQuote {
		q, ok := e.cache.LastQuote(e.ctx(), id)
		if !ok {
			return 0, false
		}
		return (q.BidPrice + q.AskPrice) / 2, true
	}
	t, ok := e.cache.LastTrade(e.ctx(), id)
	if !ok {
		return 0, false
	}
	return t.Price, true
}
