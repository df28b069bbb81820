package engine

import (
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// Engine lifecycle. Start/Stop/Reset invoke the
// corresponding method on every registered adapter in registration
// order; dispose additionally disconnects every adapter. connect and
// disconnect are reserved for live environments and are no-ops here —
// the reference adapter manages its own connection during Start/Stop.
// check_connected/check_disconnected return true iff all adapters
// (vacuously, if none) are in the requested state.

func (e *Engine) Start() {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if err := a.Start(); err != nil {
			e.logger.Error("lifecycle: adapter start failed", "client_id", a.ClientId().String(), "error", err)
		}
	}
}

func (e *Engine) Stop() {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if err := a.Stop(); err != nil {
			e.logger.Error("lifecycle: adapter stop failed", "client_id", a.ClientId().String(), "error", err)
		}
	}
}

func (e *Engine) Reset() {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if err := a.Reset(); err != nil {
			e.logger.Error("lifecycle: adapter reset failed", "client_id", a.ClientId().String(), "error", err)
		}
	}
	e.deltaBuffers = make(map[identifiers.InstrumentId][]data.OrderBookDelta)
}

func (e *Engine) Dispose() {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if !a.IsConnected() {
			continue
		}
		if err := a.Disconnect(); err != nil {
			e.logger.Error("lifecycle: adapter disconnect on dispose failed", "client_id", a.ClientId().String(), "error", err)
		}
	}
}

// Connect and Disconnect are reserved for live environments; simulation
// runs never call them, and they are no-ops here.
func (e *Engine) Connect()    {}
func (e *Engine) Disconnect() {}

func (e *Engine) CheckConnected() bool {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if !a.IsConnected() {
			return false
		}
	}
	return true
}

func (e *Engine) CheckDisconnected() bool {
	release := e.guard.Acquire()
	defer release()
	for _, a := range e.registry.All() {
		if a.IsConnected() {
			return false
		}
	}
	return true
}
