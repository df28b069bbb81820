package engine

import (
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
)

// Subscription index: for each of the nine categories,
// aggregates the union across all registered adapters. Order is
// unspecified and duplicates are possible if two adapters claim the
// same entity — callers must tolerate multiplicity.

func (e *Engine) SubscribedCustomData() []messages.DataType {
	var out []messages.DataType
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedCustomData()...)
	}
	return out
}

func (e *Engine) SubscribedInstruments() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedInstruments()...)
	}
	return out
}

func (e *Engine) SubscribedOrderBookDeltas() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedOrderBookDeltas()...)
	}
	return out
}

func (e *Engine) SubscribedOrderBookSnapshots() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedOrderBookSnapshots()...)
	}
	return out
}

func (e *Engine) SubscribedQuotes() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedQuotes()...)
	}
	return out
}

func (e *Engine) SubscribedTrades() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedTrades()...)
	}
	return out
}

func (e *Engine) SubscribedBars() []identifiers.BarType {
	var out []identifiers.BarType
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedBars()...)
	}
	return out
}

func (e *Engine) SubscribedInstrumentStatus() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedInstrumentStatus()...)
	}
	return out
}

func (e *Engine) SubscribedInstrumentClose() []identifiers.InstrumentId {
	var out []identifiers.InstrumentId
	for _, a := range e.registry.All() {
		out = append(out, a.SubscribedInstrumentClose()...)
	}
	return out
}
