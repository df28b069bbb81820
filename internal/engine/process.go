package engine

import "github.com/gradascent/nautilus-trader/internal/data"

// Process is the single entry point for inbound data events: it
// dispatches to the handler for the event's Kind and never fails —
// handler errors are logged and swallowed.
func (e *Engine) Process(d data.Data) {
	release := e.guard.Acquire()
	defer release()
	e.process(d)
}

func (e *Engine) process(d data.Data) {
	switch d.Kind() {
	case data.KindQuote:
		q, _ := d.Quote()
		e.handleQuote(q)
	case data.KindTrade:
		t, _ := d.Trade()
		e.handleTrade(t)
	case data.KindBar:
		b, _ := d.Bar()
		e.handleBar(b)
	case data.KindDelta:
		del, _ := d.Delta()
		e.handleDelta(del)
	case data.KindDeltas:
		dd, _ := d.Deltas()
		e.handleDeltas(dd)
	case data.KindDepth10:
		dep, _ := d.Depth10()
		e.handleDepth10(dep)
	default:
		e.logger.Error("process: unrecognized data kind", "kind", int(d.Kind()))
	}
}
