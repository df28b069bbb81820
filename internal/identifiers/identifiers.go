// Package identifiers defines the opaque, totally-ordered value types the
// engine uses to address clients, venues, instruments, and bar series.
// Each is a thin string wrapper: equality and ordering are the only
// operations the engine needs, and a bare string is the wrong type for
// them because it invites accidental mixing (a Venue passed where a
// ClientId is expected compiles silently with plain strings).
package identifiers

// ClientId identifies a registered data-client adapter.
type ClientId struct {
	value string
}

// NewClientId constructs a ClientId from its string form.
func NewClientId(value string) ClientId { return ClientId{value: value} }

func (c ClientId) String() string    { return c.value }
func (c ClientId) IsEmpty() bool     { return c.value == "" }
func (c ClientId) Less(o ClientId) bool { return c.value < o.value }

// Venue identifies a trading venue (exchange, ECN, liquidity pool).
type Venue struct {
	value string
}

// NewVenue constructs a Venue from its string form.
func NewVenue(value string) Venue { return Venue{value: value} }

func (v Venue) String() string  { return v.value }
func (v Venue) IsEmpty() bool   { return v.value == "" }
func (v Venue) Less(o Venue) bool { return v.value < o.value }

// InstrumentId identifies a tradeable instrument, unique across venues.
type InstrumentId struct {
	value string
}

// NewInstrumentId constructs an InstrumentId from its string form
// (conventionally "<symbol>.<venue>", e.g. "AUDUSD.SIM").
func NewInstrumentId(value string) InstrumentId { return InstrumentId{value: value} }

func (i InstrumentId) String() string      { return i.value }
func (i InstrumentId) IsEmpty() bool       { return i.value == "" }
func (i InstrumentId) Less(o InstrumentId) bool { return i.value < o.value }

// BarType identifies a bar series: an instrument, an aggregation spec, and
// an aggregation source, conventionally encoded as
// "<instrument_id>-<step>-<aggregation>-<price_type>-<source>".
type BarType struct {
	value        string
	instrumentID InstrumentId
}

// NewBarType constructs a BarType. instrumentID is carried alongside the
// encoded value so handlers never need to re-parse it back out.
func NewBarType(value string, instrumentID InstrumentId) BarType {
	return BarType{value: value, instrumentID: instrumentID}
}

func (b BarType) String() string             { return b.value }
func (b BarType) InstrumentId() InstrumentId { return b.instrumentID }
func (b BarType) Less(o BarType) bool        { return b.value < o.value }
