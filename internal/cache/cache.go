// Package cache defines the engine's authoritative-state facade: an
// insert/lookup interface for instruments, quotes, trades, bars and
// managed order books, with an in-memory implementation for tests and
// simulation and a batched Postgres-backed implementation for
// production (cache/postgres.go).
package cache

import (
	"context"

	"github.com/gradascent/nautilus-trader/internal/book"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// Cache is the insert/lookup facade the engine uses for all authoritative
// state. Implementations need not be linearizable across methods; the
// engine's Guard (internal/engine) ensures callers never interleave
// cache access with itself.
type Cache interface {
	AddInstrument(ctx context.Context, instrument data.Instrument) error
	Instrument(ctx context.Context, id identifiers.InstrumentId) (data.Instrument, bool)

	AddQuote(ctx context.Context, q data.QuoteTick) error
	LastQuote(ctx context.Context, id identifiers.InstrumentId) (data.QuoteTick, bool)

	AddTrade(ctx context.Context, t data.TradeTick) error
	LastTrade(ctx context.Context, id identifiers.InstrumentId) (data.TradeTick, bool)

	AddBar(ctx context.Context, b data.Bar) error
	LastBar(ctx context.Context, bt identifiers.BarType) (data.Bar, bool)

	// Book returns the managed order book for id, creating one if absent.
	Book(id identifiers.InstrumentId) *book.Book
	HasBook(id identifiers.InstrumentId) bool

	// Flush forces any buffered writes out (no-op for implementations
	// that write synchronously).
	Flush(ctx context.Context) error

	// Close releases any held resources (connections, tickers).
	Close(ctx context.Context) error
}
