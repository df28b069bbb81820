package cache

import (
	"context"
	"sync"

	"github.com/gradascent/nautilus-trader/internal/book"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// Memory is an in-memory Cache: last-known-value maps guarded by a
// single mutex, used in tests and simulation runs where no durable
// store is wired up.
type Memory struct {
	mu          sync.RWMutex
	instruments map[identifiers.InstrumentId]data.Instrument
	quotes      map[identifiers.InstrumentId]data.QuoteTick
	trades      map[identifiers.InstrumentId]data.TradeTick
	bars        map[identifiers.BarType]data.Bar
	books       map[identifiers.InstrumentId]*book.Book
}

func NewMemory() *Memory {
	return &Memory{
		instruments: make(map[identifiers.InstrumentId]data.Instrument),
		quotes:      make(map[identifiers.InstrumentId]data.QuoteTick),
		trades:      make(map[identifiers.InstrumentId]data.TradeTick),
		bars:        make(map[identifiers.BarType]data.Bar),
		books:       make(map[identifiers.InstrumentId]*book.Book),
	}
}

func (m *Memory) AddInstrument(ctx context.Context, instrument data.Instrument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instruments[instrument.InstrumentId] = instrument
	return nil
}

func (m *Memory) Instrument(ctx context.Context, id identifiers.InstrumentId) (data.Instrument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.instruments[id]
	return v, ok
}

func (m *Memory) AddQuote(ctx context.Context, q data.QuoteTick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.InstrumentId] = q
	return nil
}

func (m *Memory) LastQuote(ctx context.Context, id identifiers.InstrumentId) (data.QuoteTick, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.quotes[id]
	return v, ok
}

func (m *Memory) AddTrade(ctx context.Context, t data.TradeTick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[t.InstrumentId] = t
	return nil
}

func (m *Memory) LastTrade(ctx context.Context, id identifiers.InstrumentId) (data.TradeTick, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.trades[id]
	return v, ok
}

func (m *Memory) AddBar(ctx context.Context, b data.Bar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[b.BarType] = b
	return nil
}

func (m *Memory) LastBar(ctx context.Context, bt identifiers.BarType) (data.Bar, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.bars[bt]
	return v, ok
}

func (m *Memory) Book(id identifiers.InstrumentId) *book.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		b = book.New(id)
		m.books[id] = b
	}
	return b
}

func (m *Memory) HasBook(id identifiers.InstrumentId) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.books[id]
	return ok
}

func (m *Memory) Flush(ctx context.Context) error { return nil }
func (m *Memory) Close(ctx context.Context) error { return nil }

var _ Cache = (*Memory)(nil)
