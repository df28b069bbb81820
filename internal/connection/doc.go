// Package connection implements the WebSocket transport used by the
// reference data-client adapter (internal/adapter).
//
// A Client owns one logical connection to a venue across its physical
// incarnations: it dials with caller-supplied handshake headers, reads
// until the connection drops, then re-dials with exponential backoff and
// fires the reconnect hook so the owner can replay its subscriptions.
// Staleness is enforced through the read deadline: messages, pings and
// pongs all push it out, so a silent connection times out and lands in
// the reconnect path.
package connection
