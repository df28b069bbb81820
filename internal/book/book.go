// Package book maintains per-instrument order-book state: applying
// deltas and depth snapshots to produce the authoritative view the
// engine's cache mirrors.
package book

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// level is a single resting order-book entry.
type level struct {
	price float64
	size  float64
}

// Book is a managed order book for one instrument: a bid side and an ask
// side, each a price-keyed level map, rebuilt by delta application or
// replaced wholesale by a depth snapshot.
type Book struct {
	mu           sync.RWMutex
	instrumentID identifiers.InstrumentId
	bids         map[float64]level
	asks         map[float64]level
	sequence     uint64
}

// New constructs an empty book for instrumentID.
func New(instrumentID identifiers.InstrumentId) *Book {
	return &Book{
		instrumentID: instrumentID,
		bids:         make(map[float64]level),
		asks:         make(map[float64]level),
	}
}

func (b *Book) InstrumentId() identifiers.InstrumentId { return b.instrumentID }

func (b *Book) side(s data.Side) map[float64]level {
	if s == data.Buy {
		return b.bids
	}
	return b.asks
}

// ApplyDelta mutates the book according to a single delta. Sequence
// numbers are not checked here, and the engine's handler does not check
// them or event-time ordering either: deltas are applied in arrival order.
func (b *Book) ApplyDelta(d data.OrderBookDelta) error {
	if d.InstrumentId != b.instrumentID {
		return fmt.Errorf("book: delta for %s applied to book for %s", d.InstrumentId, b.instrumentID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch d.Action {
	case data.Clear:
		b.bids = make(map[float64]level)
		b.asks = make(map[float64]level)
	case data.Delete:
		delete(b.side(d.Side), d.Price)
	case data.Add, data.Update:
		if d.Size <= 0 {
			delete(b.side(d.Side), d.Price)
		} else {
			b.side(d.Side)[d.Price] = level{price: d.Price, size: d.Size}
		}
	default:
		return fmt.Errorf("book: unknown action %d", d.Action)
	}

	b.sequence = d.Sequence
	return nil
}

// ApplyDeltas applies a batch in order, stopping at the first error.
func (b *Book) ApplyDeltas(dd data.OrderBookDeltas) error {
	for _, d := range dd.Deltas {
		if err := b.ApplyDelta(d); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDepth10 replaces both sides wholesale from a top-10 snapshot.
func (b *Book) ApplyDepth10(d data.OrderBookDepth10) error {
	if d.InstrumentId != b.instrumentID {
		return fmt.Errorf("book: depth10 for %s applied to book for %s", d.InstrumentId, b.instrumentID)
	}

	bids := make(map[float64]level, 10)
	asks := make(map[float64]level, 10)
	for _, lv := range d.Bids {
		if lv.Size > 0 {
			bids[lv.Price] = level{price: lv.Price, size: lv.Size}
		}
	}
	for _, lv := range d.Asks {
		if lv.Size > 0 {
			asks[lv.Price] = level{price: lv.Price, size: lv.Size}
		}
	}

	b.mu.Lock()
	b.bids = bids
	b.asks = asks
	b.sequence = d.Sequence
	b.mu.Unlock()
	return nil
}

// BestBid returns the highest-priced bid level, if any.
func (b *Book) BestBid() (data.BookLevel, bool) {
	return extreme(b, b.bids, func(a, bb float64) bool { return a > bb })
}

// BestAsk returns the lowest-priced ask level, if any.
func (b *Book) BestAsk() (data.BookLevel, bool) {
	return extreme(b, b.asks, func(a, bb float64) bool { return a < bb })
}

func extreme(b *Book, side map[float64]level, better func(a, b float64) bool) (data.BookLevel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var best *level
	for price, lv := range side {
		if best == nil || better(price, best.price) {
			l := lv
			best = &l
		}
	}
	if best == nil {
		return data.BookLevel{}, false
	}
	return data.BookLevel{Price: best.price, Size: best.size}, true
}

// Snapshot returns up to depth levels on each side, best price first.
func (b *Book) Snapshot(depth int) (bids, asks []data.BookLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = sortedLevels(b.bids, depth, true)
	asks = sortedLevels(b.asks, depth, false)
	return bids, asks
}

func sortedLevels(side map[float64]level, depth int, descending bool) []data.BookLevel {
	out := make([]data.BookLevel, 0, len(side))
	for _, lv := range side {
		out = append(out, data.BookLevel{Price: lv.price, Size: lv.size})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	if depth > 0 && len(out) > depth {
		out = out[:depth]
	}
	return out
}
