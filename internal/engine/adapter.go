package engine

import (
	"fmt"
	"sync"

	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
)

// ClientAdapter is the contract the engine requires of a venue data
// client. The engine never reaches past this interface into a concrete
// venue integration — the reference implementation in internal/adapter
// is just one conformer.
type ClientAdapter interface {
	ClientId() identifiers.ClientId
	Venue() identifiers.Venue
	IsConnected() bool

	Start() error
	Stop() error
	Reset() error
	Connect() error
	Disconnect() error

	Execute(cmd messages.SubscriptionCommand) error
	Request(req messages.DataRequest) error

	SubscribedCustomData() []messages.DataType
	SubscribedInstruments() []identifiers.InstrumentId
	SubscribedOrderBookDeltas() []identifiers.InstrumentId
	SubscribedOrderBookSnapshots() []identifiers.InstrumentId
	SubscribedQuotes() []identifiers.InstrumentId
	SubscribedTrades() []identifiers.InstrumentId
	SubscribedBars() []identifiers.BarType
	SubscribedInstrumentStatus() []identifiers.InstrumentId
	SubscribedInstrumentClose() []identifiers.InstrumentId
}

// adapterState is the per-adapter lifecycle state:
// Registered → Connected ↔ Disconnected → Disposed.
type adapterState int

const (
	stateRegistered adapterState = iota
	stateConnected
	stateDisconnected
	stateDisposed
)

func (s adapterState) String() string {
	switch s {
	case stateRegistered:
		return "Registered"
	case stateConnected:
		return "Connected"
	case stateDisconnected:
		return "Disconnected"
	case stateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

func validTransition(from, to adapterState) bool {
	switch from {
	case stateRegistered:
		return to == stateConnected
	case stateConnected:
		return to == stateDisconnected
	case stateDisconnected:
		return to == stateConnected || to == stateDisposed
	default:
		return false
	}
}

// Backend is the venue-specific transport a BaseAdapter drives: opening
// and closing the wire connection and handing command/request payloads
// off to be sent.
type Backend interface {
	Connect() error
	Disconnect() error
	SendCommand(cmd messages.SubscriptionCommand) error
	SendRequest(req messages.DataRequest) error
}

// BaseAdapter implements the bookkeeping every ClientAdapter needs —
// the nine subscription sets, the connection state machine — so a
// concrete adapter only has to supply a Backend. internal/adapter.WSAdapter
// embeds this.
type BaseAdapter struct {
	clientId identifiers.ClientId
	venue    identifiers.Venue
	backend  Backend

	mu    sync.Mutex
	state adapterState

	customData map[string]messages.DataType
	instrument map[identifiers.InstrumentId]struct{}
	deltas     map[identifiers.InstrumentId]struct{}
	snapshots  map[identifiers.InstrumentId]struct{}
	quotes     map[identifiers.InstrumentId]struct{}
	trades     map[identifiers.InstrumentId]struct{}
	bars       map[identifiers.BarType]struct{}
	status     map[identifiers.InstrumentId]struct{}
	closeSet   map[identifiers.InstrumentId]struct{}
}

func NewBaseAdapter(clientId identifiers.ClientId, venue identifiers.Venue, backend Backend) *BaseAdapter {
	return &BaseAdapter{
		clientId:   clientId,
		venue:      venue,
		backend:    backend,
		state:      stateRegistered,
		customData: make(map[string]messages.DataType),
		instrument: make(map[identifiers.InstrumentId]struct{}),
		deltas:     make(map[identifiers.InstrumentId]struct{}),
		snapshots:  make(map[identifiers.InstrumentId]struct{}),
		quotes:     make(map[identifiers.InstrumentId]struct{}),
		trades:     make(map[identifiers.InstrumentId]struct{}),
		bars:       make(map[identifiers.BarType]struct{}),
		status:     make(map[identifiers.InstrumentId]struct{}),
		closeSet:   make(map[identifiers.InstrumentId]struct{}),
	}
}

func (a *BaseAdapter) ClientId() identifiers.ClientId { return a.clientId }
func (a *BaseAdapter) Venue() identifiers.Venue       { return a.venue }

func (a *BaseAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateConnected
}

func (a *BaseAdapter) Start() error { return nil }
func (a *BaseAdapter) Stop() error  { return nil }
func (a *BaseAdapter) Reset() error { return nil }

func (a *BaseAdapter) Connect() error {
	return a.transition(stateConnected, a.backend.Connect)
}

func (a *BaseAdapter) Disconnect() error {
	return a.transition(stateDisconnected, a.backend.Disconnect)
}

func (a *BaseAdapter) Dispose() error {
	return a.transition(stateDisposed, func() error { return nil })
}

func (a *BaseAdapter) transition(to adapterState, action func() error) error {
	a.mu.Lock()
	if !validTransition(a.state, to) {
		from := a.state
		a.mu.Unlock()
		return fmt.Errorf("adapter %s: invalid transition %s -> %s", a.clientId, from, to)
	}
	a.mu.Unlock()

	if err := action(); err != nil {
		return err
	}

	a.mu.Lock()
	a.state = to
	a.mu.Unlock()
	return nil
}

// Execute updates subscription bookkeeping for cmd and forwards it to
// the backend.
func (a *BaseAdapter) Execute(cmd messages.SubscriptionCommand) error {
	a.mu.Lock()
	a.applyCommand(cmd)
	a.mu.Unlock()
	return a.backend.SendCommand(cmd)
}

func (a *BaseAdapter) Request(req messages.DataRequest) error {
	return a.backend.SendRequest(req)
}

func (a *BaseAdapter) applyCommand(cmd messages.SubscriptionCommand) {
	add := cmd.Action == messages.Subscribe

	switch cmd.DataType.TypeName {
	case "OrderBookDelta":
		setMembership(a.deltas, instrumentFromMetadata(cmd.DataType), add)
	case "OrderBookDepth10":
		setMembership(a.snapshots, instrumentFromMetadata(cmd.DataType), add)
	case "QuoteTick":
		setMembership(a.quotes, instrumentFromMetadata(cmd.DataType), add)
	case "TradeTick":
		setMembership(a.trades, instrumentFromMetadata(cmd.DataType), add)
	case "Bar":
		if btVal, ok := cmd.DataType.Get("bar_type"); ok {
			bt := identifiers.NewBarType(btVal, instrumentFromMetadata(cmd.DataType))
			barSetMembership(a.bars, bt, add)
		}
	case "InstrumentAny":
		setMembership(a.instrument, instrumentFromMetadata(cmd.DataType), add)
	case "InstrumentStatus":
		setMembership(a.status, instrumentFromMetadata(cmd.DataType), add)
	case "InstrumentClose":
		setMembership(a.closeSet, instrumentFromMetadata(cmd.DataType), add)
	default:
		if add {
			a.customData[cmd.DataType.TypeName] = cmd.DataType
		} else {
			delete(a.customData, cmd.DataType.TypeName)
		}
	}
}

func instrumentFromMetadata(dt messages.DataType) identifiers.InstrumentId {
	if v, ok := dt.Get("instrument_id"); ok {
		return identifiers.NewInstrumentId(v)
	}
	return identifiers.InstrumentId{}
}

func setMembership(set map[identifiers.InstrumentId]struct{}, id identifiers.InstrumentId, add bool) {
	if add {
		set[id] = struct{}{}
	} else {
		delete(set, id)
	}
}

func barSetMembership(set map[identifiers.BarType]struct{}, bt identifiers.BarType, add bool) {
	if add {
		set[bt] = struct{}{}
	} else {
		delete(set, bt)
	}
}

func (a *BaseAdapter) SubscribedCustomData() []messages.DataType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]messages.DataType, 0, len(a.customData))
	for _, dt := range a.customData {
		out = append(out, dt)
	}
	return out
}

func (a *BaseAdapter) SubscribedInstruments() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.instrument)
}

func (a *BaseAdapter) SubscribedOrderBookDeltas() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.deltas)
}

func (a *BaseAdapter) SubscribedOrderBookSnapshots() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.snapshots)
}

func (a *BaseAdapter) SubscribedQuotes() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.quotes)
}

func (a *BaseAdapter) SubscribedTrades() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.trades)
}

func (a *BaseAdapter) SubscribedBars() []identifiers.BarType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]identifiers.BarType, 0, len(a.bars))
	for bt := range a.bars {
		out = append(out, bt)
	}
	return out
}

func (a *BaseAdapter) SubscribedInstrumentStatus() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.status)
}

func (a *BaseAdapter) SubscribedInstrumentClose() []identifiers.InstrumentId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return instrumentKeys(a.closeSet)
}

func instrumentKeys(set map[identifiers.InstrumentId]struct{}) []identifiers.InstrumentId {
	out := make([]identifiers.InstrumentId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
