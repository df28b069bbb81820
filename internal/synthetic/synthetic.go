// Package synthetic implements the Synthetic Feed Registry: a two-level
// index from a component instrument to the synthetic instruments derived
// from it, used by the engine to recompute and republish synthetic
// quotes/trades whenever one of their components updates.
package synthetic

import (
	"fmt"
	"sync"

	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// PriceType selects whether a synthetic is driven by quote or trade updates.
type PriceType int

const (
	PriceTypeQuote PriceType = iota
	PriceTypeTrade
)

// Formula maps the current price of each component leg to the
// synthetic's derived price. It returns false if a required leg is
// missing or stale, in which case no event is emitted for that update.
type Formula func(legs map[identifiers.InstrumentId]float64) (float64, bool)

// Instrument is a derived instrument whose price is computed from one or
// more component instruments.
type Instrument struct {
	InstrumentId identifiers.InstrumentId
	Components   []identifiers.InstrumentId
	PriceType    PriceType
	Formula      Formula
}

// Registry is the two-level component→synthetics index. Registration
// rejects a synthetic whose component list includes another already-
// registered synthetic's id, and a synthetic whose own id is already a
// component of a registered synthetic, so no synthetic derives from
// another and the engine's re-evaluation stays one level deep.
type Registry struct {
	mu           sync.RWMutex
	byComponent  map[identifiers.InstrumentId][]*Instrument
	syntheticIDs map[identifiers.InstrumentId]bool
}

func NewRegistry() *Registry {
	return &Registry{
		byComponent:  make(map[identifiers.InstrumentId][]*Instrument),
		syntheticIDs: make(map[identifiers.InstrumentId]bool),
	}
}

// Register adds syn to the index for each of its components. It errors
// if any component id is itself a registered synthetic, or if syn's own
// id is already a component of a registered synthetic.
func (r *Registry) Register(syn *Instrument) error {
	if len(syn.Components) == 0 {
		return fmt.Errorf("synthetic: %s has no component instruments", syn.InstrumentId)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range syn.Components {
		if r.syntheticIDs[c] {
			return fmt.Errorf("synthetic: component %s of %s is itself a synthetic instrument (cycle rejected)", c, syn.InstrumentId)
		}
	}
	if len(r.byComponent[syn.InstrumentId]) > 0 {
		return fmt.Errorf("synthetic: %s is already a component of a registered synthetic (cycle rejected)", syn.InstrumentId)
	}

	for _, c := range syn.Components {
		r.byComponent[c] = append(r.byComponent[c], syn)
	}
	r.syntheticIDs[syn.InstrumentId] = true
	return nil
}

// DependentsOf returns the synthetics that derive from component,
// filtered to priceType.
func (r *Registry) DependentsOf(component identifiers.InstrumentId, priceType PriceType) []*Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.byComponent[component]
	out := make([]*Instrument, 0, len(all))
	for _, s := range all {
		if s.PriceType == priceType {
			out = append(out, s)
		}
	}
	return out
}

// Evaluate recomputes syn's price from legPrices (the latest known price
// of each of its components, supplied by the caller). It returns false
// if the formula reports a required leg as missing or stale.
func (syn *Instrument) Evaluate(legPrices map[identifiers.InstrumentId]float64) (float64, bool) {
	return syn.Formula(legPrices)
}
