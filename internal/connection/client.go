package connection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a self-healing WebSocket connection to a venue: it dials,
// reads until the connection drops, then re-dials with exponential
// backoff, invoking the reconnect hook after each successful re-dial so
// the owner can replay its subscriptions. Inbound messages are
// timestamped at read time and delivered on Messages.
type Client struct {
	cfg    Config
	logger *slog.Logger

	messages chan TimestampedMessage

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	started   bool

	onReconnect func()

	cancel context.CancelFunc
	done   chan struct{}

	writeMu sync.Mutex
}

// NewClient creates a Client. It does not dial until Start.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Client{
		cfg:      cfg,
		logger:   logger,
		messages: make(chan TimestampedMessage, cfg.QueueSize),
		done:     make(chan struct{}),
	}
}

// OnReconnect registers fn to run after every successful re-dial (not
// the initial dial). Must be called before Start.
func (c *Client) OnReconnect(fn func()) { c.onReconnect = fn }

// Start dials the venue and launches the read/reconnect loop. The
// initial dial failing is returned as an error; failures after that are
// handled by the loop's backoff.
func (c *Client) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	conn, err := c.dial(runCtx)
	if err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.cancel = cancel
	c.conn = conn
	c.connected = true
	c.started = true
	c.mu.Unlock()

	go c.run(runCtx, conn)
	return nil
}

// Stop tears the connection down and ends the read/reconnect loop.
func (c *Client) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	cancel := c.cancel
	conn := c.conn
	c.connected = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		c.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		conn.Close()
	}

	<-c.done
	return nil
}

// Send writes raw bytes to the current connection.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Messages returns the inbound message channel. It is closed when the
// client stops for good.
func (c *Client) Messages() <-chan TimestampedMessage { return c.messages }

// IsConnected reports whether a connection is currently up.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// dial opens one WebSocket connection with fresh handshake headers and
// staleness enforcement wired up: every message, ping or pong pushes
// the read deadline out by StaleAfter, so a silent connection times the
// next read out and lands in the reconnect path.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	var header map[string][]string
	if c.cfg.Header != nil {
		h, err := c.cfg.Header()
		if err != nil {
			return nil, err
		}
		header = h
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))
	})
	conn.SetPingHandler(func(payload string) error {
		conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(time.Second))
	})

	return conn, nil
}

// run reads from conn until it drops, then re-dials with backoff until
// ctx is cancelled. Messages closes when the loop ends.
func (c *Client) run(ctx context.Context, conn *websocket.Conn) {
	defer close(c.done)
	defer close(c.messages)

	for {
		c.readUntilClosed(ctx, conn)

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		next, ok := c.redial(ctx)
		if !ok {
			return
		}
		conn = next

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		c.mu.Unlock()

		// Stop may have raced the re-dial; now that c.conn is published
		// it would have closed this connection, so only a cancellation
		// that landed in between needs handling here.
		if ctx.Err() != nil {
			conn.Close()
			return
		}

		if c.onReconnect != nil {
			c.onReconnect()
		}
	}
}

// readUntilClosed pumps inbound frames to Messages and keepalive pings
// to the venue until the connection errors out.
func (c *Client) readUntilClosed(ctx context.Context, conn *websocket.Conn) {
	pingDone := make(chan struct{})
	defer close(pingDone)
	go c.pingLoop(conn, pingDone)

	for {
		_, payload, err := conn.ReadMessage()
		receivedAt := time.Now()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("connection dropped", "url", c.cfg.URL, "error", err)
			}
			conn.Close()
			return
		}

		conn.SetReadDeadline(receivedAt.Add(c.cfg.StaleAfter))

		select {
		case c.messages <- TimestampedMessage{Data: payload, ReceivedAt: receivedAt}:
		case <-ctx.Done():
			conn.Close()
			return
		default:
			c.logger.Error("inbound queue full, dropping message",
				"queue_size", cap(c.messages),
				"msg_size", len(payload),
			)
		}
	}
}

// pingLoop writes a keepalive ping every PingInterval until done closes.
func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"),
				time.Now().Add(c.cfg.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("keepalive ping failed", "error", err)
				return
			}
		}
	}
}

// redial dials until it succeeds or ctx is cancelled, doubling the
// delay from ReconnectBaseDelay up to ReconnectMaxDelay.
func (c *Client) redial(ctx context.Context) (*websocket.Conn, bool) {
	delay := c.cfg.ReconnectBaseDelay

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(delay):
		}

		conn, err := c.dial(ctx)
		if err == nil {
			c.logger.Info("reconnected", "url", c.cfg.URL)
			return conn, true
		}

		c.logger.Warn("reconnect failed", "url", c.cfg.URL, "delay", delay, "error", err)
		delay *= 2
		if delay > c.cfg.ReconnectMaxDelay {
			delay = c.cfg.ReconnectMaxDelay
		}
	}
}
