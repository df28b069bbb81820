package msgbus

import (
	"fmt"

	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// Well-known point-to-point endpoint ids the engine registers itself
// under.
const (
	EndpointDataEngineExecute EndpointId = "data_engine_execute"
	EndpointDataEngineRequest EndpointId = "data_engine_request"
)

// Switchboard mints Topic values from entity keys, keeping topic-string
// construction in one place so the rest of the engine never formats a
// topic by hand.
type Switchboard struct{}

func NewSwitchboard() *Switchboard { return &Switchboard{} }

func (s *Switchboard) Quotes(id identifiers.InstrumentId) Topic {
	return Topic(fmt.Sprintf("data.quotes.%s", id))
}

func (s *Switchboard) Trades(id identifiers.InstrumentId) Topic {
	return Topic(fmt.Sprintf("data.trades.%s", id))
}

func (s *Switchboard) Deltas(id identifiers.InstrumentId) Topic {
	return Topic(fmt.Sprintf("data.book.deltas.%s", id))
}

func (s *Switchboard) Depth(id identifiers.InstrumentId) Topic {
	return Topic(fmt.Sprintf("data.book.depth.%s", id))
}

func (s *Switchboard) Bars(bt identifiers.BarType) Topic {
	return Topic(fmt.Sprintf("data.bars.%s", bt))
}

func (s *Switchboard) Instrument(id identifiers.InstrumentId) Topic {
	return Topic(fmt.Sprintf("data.instrument.%s", id))
}

// CustomData mints a topic for a non-built-in data type name, used by
// custom-data subscriptions.
func (s *Switchboard) CustomData(typeName string) Topic {
	return Topic(fmt.Sprintf("data.custom.%s", typeName))
}
