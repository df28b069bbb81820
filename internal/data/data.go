package data

import "github.com/gradascent/nautilus-trader/internal/identifiers"

// Kind tags which payload a Data value carries.
type Kind int

const (
	KindDelta Kind = iota
	KindDeltas
	KindDepth10
	KindQuote
	KindTrade
	KindBar
)

func (k Kind) String() string {
	switch k {
	case KindDelta:
		return "Delta"
	case KindDeltas:
		return "Deltas"
	case KindDepth10:
		return "Depth10"
	case KindQuote:
		return "Quote"
	case KindTrade:
		return "Trade"
	case KindBar:
		return "Bar"
	default:
		return "Unknown"
	}
}

// Data is the closed union of market-data events the engine routes.
// It carries exactly one populated payload, selected by Kind; the New*
// constructors below are the only way to build one, so a mismatched
// tag/payload pair cannot occur.
type Data struct {
	kind    Kind
	delta   *OrderBookDelta
	deltas  *OrderBookDeltas
	depth10 *OrderBookDepth10
	quote   *QuoteTick
	trade   *TradeTick
	bar     *Bar
}

func NewDelta(d OrderBookDelta) Data     { return Data{kind: KindDelta, delta: &d} }
func NewDeltas(d OrderBookDeltas) Data   { return Data{kind: KindDeltas, deltas: &d} }
func NewDepth10(d OrderBookDepth10) Data { return Data{kind: KindDepth10, depth10: &d} }
func NewQuote(q QuoteTick) Data          { return Data{kind: KindQuote, quote: &q} }
func NewTrade(t TradeTick) Data          { return Data{kind: KindTrade, trade: &t} }
func NewBar(b Bar) Data                  { return Data{kind: KindBar, bar: &b} }

func (d Data) Kind() Kind { return d.kind }

// Delta returns the payload and true if Kind is KindDelta.
func (d Data) Delta() (OrderBookDelta, bool) {
	if d.kind != KindDelta {
		return OrderBookDelta{}, false
	}
	return *d.delta, true
}

func (d Data) Deltas() (OrderBookDeltas, bool) {
	if d.kind != KindDeltas {
		return OrderBookDeltas{}, false
	}
	return *d.deltas, true
}

func (d Data) Depth10() (OrderBookDepth10, bool) {
	if d.kind != KindDepth10 {
		return OrderBookDepth10{}, false
	}
	return *d.depth10, true
}

func (d Data) Quote() (QuoteTick, bool) {
	if d.kind != KindQuote {
		return QuoteTick{}, false
	}
	return *d.quote, true
}

func (d Data) Trade() (TradeTick, bool) {
	if d.kind != KindTrade {
		return TradeTick{}, false
	}
	return *d.trade, true
}

func (d Data) Bar() (Bar, bool) {
	if d.kind != KindBar {
		return Bar{}, false
	}
	return *d.bar, true
}

// InstrumentId returns the instrument the payload belongs to, regardless
// of which Kind it is.
func (d Data) InstrumentId() identifiers.InstrumentId {
	switch d.kind {
	case KindDelta:
		return d.delta.InstrumentId
	case KindDeltas:
		return d.deltas.InstrumentId
	case KindDepth10:
		return d.depth10.InstrumentId
	case KindQuote:
		return d.quote.InstrumentId
	case KindTrade:
		return d.trade.InstrumentId
	case KindBar:
		return d.bar.InstrumentId()
	default:
		return identifiers.InstrumentId{}
	}
}

// TsInit returns the ingress timestamp of the payload.
func (d Data) TsInit() int64 {
	switch d.kind {
	case KindDelta:
		return d.delta.TsInit
	case KindDeltas:
		return d.deltas.TsInit
	case KindDepth10:
		return d.depth10.TsInit
	case KindQuote:
		return d.quote.TsInit
	case KindTrade:
		return d.trade.TsInit
	case KindBar:
		return d.bar.TsInit
	default:
		return 0
	}
}

// TsEvent returns the source-assigned timestamp of the payload.
func (d Data) TsEvent() int64 {
	switch d.kind {
	case KindDelta:
		return d.delta.TsEvent
	case KindDeltas:
		return d.deltas.TsEvent
	case KindDepth10:
		return d.depth10.TsEvent
	case KindQuote:
		return d.quote.TsEvent
	case KindTrade:
		return d.trade.TsEvent
	case KindBar:
		return d.bar.TsEvent
	default:
		return 0
	}
}
