// Package messages defines the traffic that crosses the engine's
// command/request/response boundary: subscription commands from
// strategies, data requests, and the responses an adapter hands back.
package messages

import (
	"github.com/google/uuid"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// MetadataEntry is one key/value pair of a DataType's metadata. Value is
// a pointer because metadata values are nullable.
type MetadataEntry struct {
	Key   string
	Value *string
}

// DataType names what a command subscribes to or a request asks for:
// a type name plus an ordered, nullable-valued metadata mapping (e.g.
// {instrument_id: AUDUSD.SIM, book_type: L3_MBO}). Entries keep the
// order they were given in; Get returns the first entry with a
// matching key.
type DataType struct {
	TypeName string
	Metadata []MetadataEntry
}

// Get returns the value for key and whether key was present at all
// (a present key with a nil value returns ("", true)).
func (t DataType) Get(key string) (string, bool) {
	for _, e := range t.Metadata {
		if e.Key == key {
			if e.Value == nil {
				return "", true
			}
			return *e.Value, true
		}
	}
	return "", false
}

// Action selects whether a SubscriptionCommand adds or removes interest.
type Action int

const (
	Subscribe Action = iota
	Unsubscribe
)

func (a Action) String() string {
	if a == Unsubscribe {
		return "Unsubscribe"
	}
	return "Subscribe"
}

// SubscriptionCommand instructs the engine to add or remove a
// subscription on behalf of client_id.
type SubscriptionCommand struct {
	ClientId      identifiers.ClientId
	Venue         identifiers.Venue
	DataType      DataType
	Action        Action
	CorrelationId uuid.UUID
	TsInit        int64
}

// DataRequest mirrors SubscriptionCommand but has no action: it asks an
// adapter to fetch data once rather than to (un)subscribe to a stream.
type DataRequest struct {
	ClientId      identifiers.ClientId
	Venue         identifiers.Venue
	DataType      DataType
	CorrelationId uuid.UUID
	TsInit        int64
}

// PayloadKind tags which slice a ResponsePayload carries.
type PayloadKind int

const (
	PayloadInstruments PayloadKind = iota
	PayloadQuotes
	PayloadTrades
	PayloadBars
	PayloadCustom
)

// ResponsePayload is the closed union of data a DataResponse can carry.
// Exactly one of the typed slices or Custom is meaningful, selected by
// Kind; construct with the New* functions so decoding stays total (an
// unrecognized wire shape becomes PayloadCustom rather than a decode
// error).
type ResponsePayload struct {
	kind        PayloadKind
	instruments []data.Instrument
	quotes      []data.QuoteTick
	trades      []data.TradeTick
	bars        []data.Bar
	custom      []byte
}

func NewInstrumentsPayload(v []data.Instrument) ResponsePayload {
	return ResponsePayload{kind: PayloadInstruments, instruments: v}
}

func NewQuotesPayload(v []data.QuoteTick) ResponsePayload {
	return ResponsePayload{kind: PayloadQuotes, quotes: v}
}

func NewTradesPayload(v []data.TradeTick) ResponsePayload {
	return ResponsePayload{kind: PayloadTrades, trades: v}
}

func NewBarsPayload(v []data.Bar) ResponsePayload {
	return ResponsePayload{kind: PayloadBars, bars: v}
}

func NewCustomPayload(v []byte) ResponsePayload {
	return ResponsePayload{kind: PayloadCustom, custom: v}
}

func (p ResponsePayload) Kind() PayloadKind { return p.kind }

func (p ResponsePayload) Instruments() ([]data.Instrument, bool) {
	return p.instruments, p.kind == PayloadInstruments
}

func (p ResponsePayload) Quotes() ([]data.QuoteTick, bool) {
	return p.quotes, p.kind == PayloadQuotes
}

func (p ResponsePayload) Trades() ([]data.TradeTick, bool) {
	return p.trades, p.kind == PayloadTrades
}

func (p ResponsePayload) Bars() ([]data.Bar, bool) {
	return p.bars, p.kind == PayloadBars
}

func (p ResponsePayload) Custom() ([]byte, bool) {
	return p.custom, p.kind == PayloadCustom
}

// DataResponse is an adapter's answer to a DataRequest, correlated back
// to it by CorrelationId.
type DataResponse struct {
	CorrelationId uuid.UUID
	DataType      DataType
	Payload       ResponsePayload
	TsInit        int64
}
