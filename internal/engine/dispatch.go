package engine

import "github.com/gradascent/nautilus-trader/internal/messages"

// Command dispatch. Execute resolves the addressed
// adapter strictly by client_id — no routing or default fallback — so a
// command to an unknown client_id is dropped rather than silently
// misrouted.

// Execute accepts a SubscriptionCommand and forwards it to the adapter
// named by its client_id.
func (e *Engine) Execute(cmd messages.SubscriptionCommand) {
	release := e.guard.Acquire()
	defer release()
	e.execute(cmd)
}

func (e *Engine) execute(cmd messages.SubscriptionCommand) {
	adapter, ok := e.registry.GetByClientId(cmd.ClientId)
	if !ok {
		e.logger.Error("dispatch: unknown client_id, command dropped", "client_id", cmd.ClientId.String())
		return
	}
	if err := adapter.Execute(cmd); err != nil {
		e.logger.Error("dispatch: adapter execute failed", "client_id", cmd.ClientId.String(), "error", err)
	}
}

// SubscriptionCommandHandler is the engine's bus handler, registered
// under the well-known endpoint id "data_engine_execute". It attempts
// to interpret msg as a SubscriptionCommand; anything else is logged
// and dropped.
func (e *Engine) SubscriptionCommandHandler(msg any) {
	cmd, ok := msg.(messages.SubscriptionCommand)
	if !ok {
		e.logger.Error("dispatch: message is not a SubscriptionCommand")
		return
	}
	e.Execute(cmd)
}
