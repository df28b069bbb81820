package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gradascent/nautilus-trader/internal/data"
)

// PostgresConfig configures batching behavior for Postgres.
type PostgresConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		BatchSize:     500,
		FlushInterval: time.Second,
	}
}

// Postgres is a Cache backed by a pgxpool.Pool. Reads are served from an
// in-memory mirror so lookups never block on durability; writes are
// batched and flushed on a ticker or once BatchSize rows accumulate,
// following the same batch-accumulate-then-pgx.Batch pattern the
// reference venue writer used for order-book deltas.
type Postgres struct {
	*Memory

	cfg    PostgresConfig
	pool   *pgxpool.Pool
	logger *slog.Logger

	batchMu     sync.Mutex
	quoteBatch  []data.QuoteTick
	tradeBatch  []data.TradeTick
	barBatch    []data.Bar
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPostgres wraps pool with batched durability on top of an in-memory
// read mirror.
func NewPostgres(pool *pgxpool.Pool, cfg PostgresConfig, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Postgres{
		Memory:      NewMemory(),
		cfg:         cfg,
		pool:        pool,
		logger:      logger,
		quoteBatch:  make([]data.QuoteTick, 0, cfg.BatchSize),
		tradeBatch:  make([]data.TradeTick, 0, cfg.BatchSize),
		barBatch:    make([]data.Bar, 0, cfg.BatchSize),
		ctx:         ctx,
		cancel:      cancel,
		flushTicker: time.NewTicker(cfg.FlushInterval),
	}
	p.wg.Add(1)
	go p.flushLoop()
	return p
}

func (p *Postgres) flushLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.flushTicker.C:
			if err := p.Flush(context.Background()); err != nil {
				p.logger.Error("cache flush failed", "error", err)
			}
		}
	}
}

func (p *Postgres) AddQuote(ctx context.Context, q data.QuoteTick) error {
	if err := p.Memory.AddQuote(ctx, q); err != nil {
		return err
	}
	p.batchMu.Lock()
	p.quoteBatch = append(p.quoteBatch, q)
	shouldFlush := len(p.quoteBatch) >= p.cfg.BatchSize
	p.batchMu.Unlock()
	if shouldFlush {
		return p.Flush(ctx)
	}
	return nil
}

func (p *Postgres) AddTrade(ctx context.Context, t data.TradeTick) error {
	if err := p.Memory.AddTrade(ctx, t); err != nil {
		return err
	}
	p.batchMu.Lock()
	p.tradeBatch = append(p.tradeBatch, t)
	shouldFlush := len(p.tradeBatch) >= p.cfg.BatchSize
	p.batchMu.Unlock()
	if shouldFlush {
		return p.Flush(ctx)
	}
	return nil
}

func (p *Postgres) AddBar(ctx context.Context, b data.Bar) error {
	if err := p.Memory.AddBar(ctx, b); err != nil {
		return err
	}
	p.batchMu.Lock()
	p.barBatch = append(p.barBatch, b)
	shouldFlush := len(p.barBatch) >= p.cfg.BatchSize
	p.batchMu.Unlock()
	if shouldFlush {
		return p.Flush(ctx)
	}
	return nil
}

// Flush drains the pending batches into Postgres via a single
// pgx.Batch per table.
func (p *Postgres) Flush(ctx context.Context) error {
	p.batchMu.Lock()
	quotes := p.quoteBatch
	trades := p.tradeBatch
	bars := p.barBatch
	p.quoteBatch = make([]data.QuoteTick, 0, p.cfg.BatchSize)
	p.tradeBatch = make([]data.TradeTick, 0, p.cfg.BatchSize)
	p.barBatch = make([]data.Bar, 0, p.cfg.BatchSize)
	p.batchMu.Unlock()

	if len(quotes) == 0 && len(trades) == 0 && len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quotes (instrument_id, bid_price, ask_price, bid_size, ask_size, ts_event, ts_init)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT DO NOTHING
		`, q.InstrumentId.String(), q.BidPrice, q.AskPrice, q.BidSize, q.AskSize, q.TsEvent, q.TsInit)
	}
	for _, t := range trades {
		batch.Queue(`
			INSERT INTO trades (instrument_id, price, size, aggressor_side, trade_id, ts_event, ts_init)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT DO NOTHING
		`, t.InstrumentId.String(), t.Price, t.Size, t.AggressorSide.String(), t.TradeId, t.TsEvent, t.TsInit)
	}
	for _, b := range bars {
		batch.Queue(`
			INSERT INTO bars (bar_type, open, high, low, close, volume, ts_event, ts_init)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT DO NOTHING
		`, b.BarType.String(), b.Open, b.High, b.Low, b.Close, b.Volume, b.TsEvent, b.TsInit)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	n := len(quotes) + len(trades) + len(bars)
	for i := 0; i < n; i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Close(ctx context.Context) error {
	p.cancel()
	p.flushTicker.Stop()
	p.wg.Wait()
	if err := p.Flush(ctx); err != nil {
		return err
	}
	p.pool.Close()
	return nil
}

var _ Cache = (*Postgres)(nil)
