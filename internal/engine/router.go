package engine

import "github.com/gradascent/nautilus-trader/internal/messages"

// Request/response routing. RequestData resolves the
// addressed adapter by client_id only, with no fallback, mirroring
// Execute's strictness. Response decodes the reply by its data_type tag,
// bulk-inserts into the cache, and republishes unconditionally — even an
// unrecognized type_name still gets republished, it just has no cache
// side effect.

func (e *Engine) RequestData(req messages.DataRequest) {
	release := e.guard.Acquire()
	defer release()
	e.requestData(req)
}

func (e *Engine) requestData(req messages.DataRequest) {
	adapter, ok := e.registry.GetByClientId(req.ClientId)
	if !ok {
		e.logger.Error("router: unknown client_id, request dropped", "client_id", req.ClientId.String())
		return
	}
	if err := adapter.Request(req); err != nil {
		e.logger.Error("router: adapter request failed", "client_id", req.ClientId.String(), "error", err)
	}
}

// DataRequestHandler is the bus handler for the "data_engine_request"
// endpoint.
func (e *Engine) DataRequestHandler(msg any) {
	req, ok := msg.(messages.DataRequest)
	if !ok {
		e.logger.Error("router: message is not a DataRequest")
		return
	}
	e.RequestData(req)
}

// Response delivers an adapter's DataResponse back through the engine.
func (e *Engine) Response(resp messages.DataResponse) {
	release := e.guard.Acquire()
	defer release()
	e.response(resp)
}

func (e *Engine) response(resp messages.DataResponse) {
	switch resp.DataType.TypeName {
	case "InstrumentAny":
		if instruments, ok := resp.Payload.Instruments(); ok {
			for _, ins := range instruments {
				if err := e.cache.AddInstrument(e.ctx(), ins); err != nil {
					e.logger.Error("router: instrument cache insert failed", "instrument_id", ins.InstrumentId.String(), "error", err)
				}
				e.bus.Publish(e.switchboard.Instrument(ins.InstrumentId), ins)
			}
		}
	case "QuoteTick":
		if quotes, ok := resp.Payload.Quotes(); ok {
			for _, q := range quotes {
				if err := e.cache.AddQuote(e.ctx(), q); err != nil {
					e.logger.Error("router: quote cache insert failed", "error", err)
				}
			}
		}
	case "TradeTick":
		if trades, ok := resp.Payload.Trades(); ok {
			for _, t := range trades {
				if err := e.cache.AddTrade(e.ctx(), t); err != nil {
					e.logger.Error("router: trade cache insert failed", "error", err)
				}
			}
		}
	case "Bar":
		if bars, ok := resp.Payload.Bars(); ok {
			for _, b := range bars {
				if err := e.cache.AddBar(e.ctx(), b); err != nil {
					e.logger.Error("router: bar cache insert failed", "error", err)
				}
			}
		}
	default:
		e.logger.Debug("router: unrecognized response data_type, no cache side effect", "type_name", resp.DataType.TypeName)
	}

	e.bus.SendResponse(resp.CorrelationId, resp)
}
