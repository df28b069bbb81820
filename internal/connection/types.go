package connection

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrNotConnected is returned by Send while no connection is up.
var ErrNotConnected = errors.New("not connected")

// TimestampedMessage wraps raw message data with its receive timestamp,
// which becomes the event's ingress time downstream.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// Config configures a Client.
type Config struct {
	// URL is the venue's WebSocket endpoint.
	URL string

	// Header, if non-nil, supplies handshake headers (authentication).
	// It is invoked before every dial, including re-dials, so signatures
	// carry a fresh timestamp.
	Header func() (http.Header, error)

	// Reconnect backoff: after a dropped connection the client re-dials
	// with delays doubling from ReconnectBaseDelay up to
	// ReconnectMaxDelay until it succeeds or the client is stopped.
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration

	// PingInterval is how often a keepalive ping is written.
	// StaleAfter bounds the read deadline: a connection with no traffic
	// (messages, pings or pongs) for this long is dropped and re-dialed.
	PingInterval time.Duration
	StaleAfter   time.Duration

	WriteTimeout time.Duration

	// QueueSize buffers inbound messages between the read loop and the
	// consumer.
	QueueSize int
}

func (c *Config) applyDefaults() {
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 60 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = 60 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.QueueSize == 0 {
		c.QueueSize = 10000
	}
}

// Wire types for the venue's command channel.

// Command is a WebSocket command sent to the venue.
type Command struct {
	ID     int64 `json:"id"`
	Cmd    string `json:"cmd"`
	Params any    `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels    []string `json:"channels"`
	Instruments []string `json:"instruments,omitempty"`
}

// UnsubscribeParams are parameters for an unsubscribe command.
type UnsubscribeParams struct {
	SIDs []int64 `json:"sids"`
}

// Response is a command response from the venue.
type Response struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"` // "subscribed", "unsubscribed", "error", "ok"
	Msg  json.RawMessage `json:"msg"`
}

// DataMessage is a data message envelope from the venue (quote, trade,
// book delta, ...).
type DataMessage struct {
	Type string          `json:"type"`
	SID  int64           `json:"sid"`
	Seq  int64           `json:"seq,omitempty"`
	Msg  json.RawMessage `json:"msg"`
}
