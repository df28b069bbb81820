package engine

import "github.com/gradascent/nautilus-trader/internal/identifiers"

// Registry is the client adapter registry: an insertion-
// ordered map of registered adapters, a venue→client routing fallback,
// and an optional default adapter. It is not internally synchronized —
// the Engine's Guard serializes all access, the same way the original
// engine's registry assumes single-threaded ownership.
type Registry struct {
	order    []identifiers.ClientId
	adapters map[identifiers.ClientId]ClientAdapter

	routingOrder []identifiers.Venue
	routing      map[identifiers.Venue]identifiers.ClientId

	defaultAdapter ClientAdapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[identifiers.ClientId]ClientAdapter),
		routing:  make(map[identifiers.Venue]identifiers.ClientId),
	}
}

// Register inserts adapter under its client_id, overwriting any prior
// adapter with that id (invariant 1: at most one adapter per client_id
// ever survives a Register call). If routing is non-nil, also inserts
// into the routing map, overwriting any prior entry for that Venue.
func (r *Registry) Register(adapter ClientAdapter, routing *identifiers.Venue) {
	id := adapter.ClientId()
	if _, exists := r.adapters[id]; !exists {
		r.order = append(r.order, id)
	}
	r.adapters[id] = adapter

	if routing != nil {
		if _, exists := r.routing[*routing]; !exists {
			r.routingOrder = append(r.routingOrder, *routing)
		}
		r.routing[*routing] = id
	}
}

// Deregister removes the adapter and every routing entry pointing to
// it. Removing an unknown id is a no-op; it returns false so the caller
// can log a warning without treating the repeat removal as an error.
func (r *Registry) Deregister(id identifiers.ClientId) bool {
	if _, exists := r.adapters[id]; !exists {
		return false
	}
	delete(r.adapters, id)
	r.order = removeClientId(r.order, id)

	for v, cid := range r.routing {
		if cid == id {
			delete(r.routing, v)
			r.routingOrder = removeVenue(r.routingOrder, v)
		}
	}

	if r.defaultAdapter != nil && r.defaultAdapter.ClientId() == id {
		r.defaultAdapter = nil
	}
	return true
}

// Get resolves an adapter for (clientId, venue): direct client_id match
// first, then the routing map, then the default adapter.
func (r *Registry) Get(clientId identifiers.ClientId, venue identifiers.Venue) (ClientAdapter, bool) {
	if a, ok := r.adapters[clientId]; ok {
		return a, true
	}
	if cid, ok := r.routing[venue]; ok {
		if a, ok := r.adapters[cid]; ok {
			return a, true
		}
	}
	if r.defaultAdapter != nil {
		return r.defaultAdapter, true
	}
	return nil, false
}

// GetByClientId resolves strictly by client_id, with no routing or
// default fallback. Commands and requests use this: a misaddressed
// command is dropped, never silently rerouted.
func (r *Registry) GetByClientId(clientId identifiers.ClientId) (ClientAdapter, bool) {
	a, ok := r.adapters[clientId]
	return a, ok
}

func (r *Registry) SetDefault(adapter ClientAdapter) { r.defaultAdapter = adapter }

// All returns every registered adapter in registration order.
func (r *Registry) All() []ClientAdapter {
	out := make([]ClientAdapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

func removeClientId(s []identifiers.ClientId, id identifiers.ClientId) []identifiers.ClientId {
	out := s[:0]
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeVenue(s []identifiers.Venue, v identifiers.Venue) []identifiers.Venue {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
