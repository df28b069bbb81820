// Package data defines the engine's payload types: the closed DataKind
// tagged union of inbound market-data events, and the reference-data
// Instrument type carried by requests/responses.
//
// Every payload carries an InstrumentId (for Bar, derived from its
// BarType) and two monotonic nanosecond timestamps: TsEvent (assigned by
// the source) and TsInit (assigned at ingress). Data is constructed only
// through the New* functions below so a Data value can never carry a tag
// that disagrees with its payload.
package data

import "github.com/gradascent/nautilus-trader/internal/identifiers"

// Side is the side of an order-book delta or the aggressor side of a trade.
type Side int

const (
	NoSide Side = iota
	Buy
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// BookAction describes the mutation an OrderBookDelta applies.
type BookAction int

const (
	Add BookAction = iota
	Update
	Delete
	Clear
)

// FlagLast marks the final delta in a multi-part update batch: on
// observing it, buffered deltas are flushed as one Deltas event.
const FlagLast uint8 = 1 << 7

// BookLevel is a single (price, size) point, used by Depth10.
type BookLevel struct {
	Price float64
	Size  float64
}

// OrderBookDelta is a single order-book mutation.
type OrderBookDelta struct {
	InstrumentId identifiers.InstrumentId
	Action       BookAction
	Side         Side
	Price        float64
	Size         float64
	Flags        uint8
	Sequence     uint64
	TsEvent      int64
	TsInit       int64
}

func (d OrderBookDelta) IsLast() bool { return d.Flags&FlagLast != 0 }

// OrderBookDeltas is an atomic batch of deltas for one instrument.
type OrderBookDeltas struct {
	InstrumentId identifiers.InstrumentId
	Deltas       []OrderBookDelta
	TsEvent      int64
	TsInit       int64
}

// OrderBookDepth10 is a top-10 snapshot of both sides of a book.
type OrderBookDepth10 struct {
	InstrumentId identifiers.InstrumentId
	Bids         [10]BookLevel
	Asks         [10]BookLevel
	BidCounts    [10]uint32
	AskCounts    [10]uint32
	Flags        uint8
	Sequence     uint64
	TsEvent      int64
	TsInit       int64
}

// QuoteTick is a top-of-book bid/ask update.
type QuoteTick struct {
	InstrumentId identifiers.InstrumentId
	BidPrice     float64
	AskPrice     float64
	BidSize      float64
	AskSize      float64
	TsEvent      int64
	TsInit       int64
}

// TradeTick is a single executed trade.
type TradeTick struct {
	InstrumentId  identifiers.InstrumentId
	Price         float64
	Size          float64
	AggressorSide Side
	TradeId       string
	TsEvent       int64
	TsInit        int64
}

// Bar is an OHLCV aggregate over the window named by BarType.
type Bar struct {
	BarType identifiers.BarType
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Volume  float64
	TsEvent int64
	TsInit  int64
	// IsRevision marks a corrected republish of a previously-published bar.
	// Reserved: no handler reads it yet; revisions fail closed under
	// sequence validation until the revision policy is defined.
	IsRevision bool
}

func (b Bar) InstrumentId() identifiers.InstrumentId { return b.BarType.InstrumentId() }

// Instrument is reference data for a tradeable instrument. The engine
// treats it as opaque beyond identity and timestamps; richer instrument
// classes (option, future, crypto perpetual, ...) are a venue-adapter
// concern the engine never inspects.
type Instrument struct {
	InstrumentId   identifiers.InstrumentId
	Venue          identifiers.Venue
	PriceIncrement float64
	SizeIncrement  float64
	TsEvent        int64
	TsInit         int64
}
