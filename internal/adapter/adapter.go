// Package adapter implements the reference data-client adapter: a
// WebSocket-fed, REST-backed client for one venue, conforming to the
// engine's ClientAdapter contract. The engine itself never depends on
// this package; it is wired in at process startup (cmd/engine).
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gradascent/nautilus-trader/internal/auth"
	"github.com/gradascent/nautilus-trader/internal/connection"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/discovery"
	"github.com/gradascent/nautilus-trader/internal/engine"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
	"github.com/gradascent/nautilus-trader/internal/restclient"
)

// DataEngine is the slice of the engine the adapter feeds: inbound data
// events and request responses. Narrowed to an interface so tests can
// record what the adapter delivers.
type DataEngine interface {
	Process(d data.Data)
	Response(resp messages.DataResponse)
}

// Config holds the adapter's connection settings. The reconnect, ping
// and queue tuning passes straight through to the transport
// (internal/connection), which owns the reconnect loop.
type Config struct {
	ClientID string
	Venue    string

	WSURL  string
	Signer *auth.Signer // nil for unauthenticated connections

	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	PingInterval       time.Duration
	StaleAfter         time.Duration
	WriteTimeout       time.Duration
	BufferSize         int
}

// WSAdapter is the reference ClientAdapter: subscription bookkeeping and
// the connection state machine come from engine.BaseAdapter; this type
// supplies the venue transport (WebSocket stream, REST reference data)
// and the wire translation in both directions.
type WSAdapter struct {
	*engine.BaseAdapter

	cfg    Config
	rest   *restclient.Client
	disc   *discovery.Service
	eng    DataEngine
	logger *slog.Logger

	connMu    sync.Mutex
	conn      *connection.Client
	nextCmdID atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New constructs a WSAdapter. disc may be nil (no reference-data sync);
// rest may be nil (data requests will fail). eng must not be nil.
func New(cfg Config, rest *restclient.Client, disc *discovery.Service, eng DataEngine, logger *slog.Logger) *WSAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	a := &WSAdapter{
		cfg:    cfg,
		rest:   rest,
		disc:   disc,
		eng:    eng,
		logger: logger,
	}
	a.BaseAdapter = engine.NewBaseAdapter(
		identifiers.NewClientId(cfg.ClientID),
		identifiers.NewVenue(cfg.Venue),
		&wsBackend{a},
	)
	return a
}

var _ engine.ClientAdapter = (*WSAdapter)(nil)

// wsBackend adapts the WSAdapter's unexported transport methods to the
// engine.Backend contract, keeping the BaseAdapter's exported
// Connect/Disconnect (the state machine) distinct from the wire-level
// connect/disconnect they drive.
type wsBackend struct{ a *WSAdapter }

func (b *wsBackend) Connect() error                                     { return b.a.connect() }
func (b *wsBackend) Disconnect() error                                  { return b.a.disconnect() }
func (b *wsBackend) SendCommand(cmd messages.SubscriptionCommand) error { return b.a.sendCommand(cmd) }
func (b *wsBackend) SendRequest(req messages.DataRequest) error         { return b.a.sendRequest(req) }

// Start connects the WebSocket stream and launches the reference-data
// sync.
func (a *WSAdapter) Start() error {
	if err := a.Connect(); err != nil {
		return err
	}
	if a.disc != nil {
		// Discovery delivers into the engine; starting it on a separate
		// goroutine keeps the initial sync's delivery a callback drained
		// by the engine rather than a synchronous loop back into it.
		go func() {
			if err := a.disc.Start(context.Background()); err != nil {
				a.logger.Error("adapter: discovery start failed", "error", err)
			}
		}()
	}
	return nil
}

// Stop tears down the reference-data sync and disconnects. Discovery
// teardown happens off the calling goroutine: its loop may be mid-way
// through delivering a response into the engine, and the engine thread
// driving this Stop must not wait on it.
func (a *WSAdapter) Stop() error {
	if a.disc != nil {
		go func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.disc.Stop(stopCtx); err != nil {
				a.logger.Error("adapter: discovery stop failed", "error", err)
			}
		}()
	}
	if a.IsConnected() {
		return a.Disconnect()
	}
	return nil
}

func (a *WSAdapter) connect() error {
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.group, _ = errgroup.WithContext(a.ctx)

	conn := connection.NewClient(connection.Config{
		URL:                a.cfg.WSURL,
		Header:             a.handshakeHeader,
		ReconnectBaseDelay: a.cfg.ReconnectBaseDelay,
		ReconnectMaxDelay:  a.cfg.ReconnectMaxDelay,
		PingInterval:       a.cfg.PingInterval,
		StaleAfter:         a.cfg.StaleAfter,
		WriteTimeout:       a.cfg.WriteTimeout,
		QueueSize:          a.cfg.BufferSize,
	}, a.logger)

	// Every re-dial replays the adapter's current subscription sets onto
	// the fresh connection.
	conn.OnReconnect(a.resubscribe)

	if err := conn.Start(a.ctx); err != nil {
		a.cancel()
		return err
	}

	a.connMu.Lock()
	a.conn = conn
	a.connMu.Unlock()

	a.group.Go(func() error {
		a.drainLoop(a.ctx, conn)
		return nil
	})

	return nil
}

func (a *WSAdapter) disconnect() error {
	if a.cancel != nil {
		a.cancel()
	}

	a.connMu.Lock()
	conn := a.conn
	a.conn = nil
	a.connMu.Unlock()

	if conn == nil {
		return nil
	}
	// Stop waits only for the transport's own loop; the drain loop exits
	// on its own once the message channel closes, and is not waited on
	// here because it may be blocked handing an in-flight event to the
	// engine thread driving this disconnect.
	return conn.Stop()
}

// handshakeHeader signs the WebSocket handshake; the transport calls it
// on every dial so each attempt carries a fresh timestamp.
func (a *WSAdapter) handshakeHeader() (http.Header, error) {
	if a.cfg.Signer == nil {
		return nil, nil
	}
	return a.cfg.Signer.WebSocketHeaders(time.Now())
}

func (a *WSAdapter) currentConn() *connection.Client {
	a.connMu.Lock()
	defer a.connMu.Unlock()
	return a.conn
}

// drainLoop feeds decoded inbound events into the engine. Decode
// failures are logged and skipped so one malformed message never stalls
// the stream; reconnection is the transport's concern, invisible here
// beyond a gap in the message flow.
func (a *WSAdapter) drainLoop(ctx context.Context, conn *connection.Client) {
	for {
		select {
		case <-ctx.Done():
			return

		case raw, ok := <-conn.Messages():
			if !ok {
				return
			}
			d, isData, err := decodeMessage(raw)
			if err != nil {
				a.logger.Warn("adapter: dropping undecodable message", "error", err)
				continue
			}
			if !isData {
				continue
			}
			a.eng.Process(d)
		}
	}
}

// resubscribe replays the adapter's subscription sets; the transport
// invokes it after each successful re-dial.
func (a *WSAdapter) resubscribe() {
	send := func(channel string, instruments []identifiers.InstrumentId) {
		if len(instruments) == 0 {
			return
		}
		symbols := make([]string, len(instruments))
		for i, id := range instruments {
			symbols[i] = id.String()
		}
		if err := a.sendWire("subscribe", channel, symbols); err != nil {
			a.logger.Error("adapter: resubscribe failed", "channel", channel, "error", err)
		}
	}

	send("quote", a.SubscribedQuotes())
	send("trade", a.SubscribedTrades())
	send("orderbook_delta", a.SubscribedOrderBookDeltas())
	send("orderbook_snapshot", a.SubscribedOrderBookSnapshots())
}

// sendCommand translates a SubscriptionCommand into the venue's wire
// command and sends it.
func (a *WSAdapter) sendCommand(cmd messages.SubscriptionCommand) error {
	channel, ok := channelForDataType(cmd.DataType.TypeName)
	if !ok {
		// Custom and reference-data subscriptions have no wire channel;
		// bookkeeping alone is the subscription.
		return nil
	}

	verb := "subscribe"
	if cmd.Action == messages.Unsubscribe {
		verb = "unsubscribe"
	}

	var instruments []string
	if id, ok := cmd.DataType.Get("instrument_id"); ok && id != "" {
		instruments = []string{id}
	}

	return a.sendWire(verb, channel, instruments)
}

func (a *WSAdapter) sendWire(verb, channel string, instruments []string) error {
	conn := a.currentConn()
	if conn == nil {
		return connection.ErrNotConnected
	}

	wire := connection.Command{
		ID:  a.nextCmdID.Add(1),
		Cmd: verb,
		Params: connection.SubscribeParams{
			Channels:    []string{channel},
			Instruments: instruments,
		},
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return conn.Send(payload)
}

// sendRequest services a DataRequest. Instrument reference data is
// fetched over REST and delivered back through the engine's Response
// entry point on a separate goroutine, matching the adapter contract's
// asynchronous response channel.
func (a *WSAdapter) sendRequest(req messages.DataRequest) error {
	if req.DataType.TypeName != "InstrumentAny" {
		return fmt.Errorf("adapter %s: unsupported request type %q", a.ClientId(), req.DataType.TypeName)
	}
	if a.rest == nil {
		return fmt.Errorf("adapter %s: no REST client configured", a.ClientId())
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var opts restclient.GetInstrumentsOptions
		if symbol, ok := req.DataType.Get("symbol"); ok && symbol != "" {
			opts.Symbols = []string{symbol}
		}

		wire, err := a.rest.GetAllInstruments(ctx, opts)
		if err != nil {
			a.logger.Error("adapter: instrument request failed",
				"correlation_id", req.CorrelationId,
				"error", err,
			)
			return
		}

		now := time.Now().UnixNano()
		instruments := make([]data.Instrument, 0, len(wire))
		for _, w := range wire {
			instruments = append(instruments, w.ToData(a.Venue(), now))
		}

		a.eng.Response(messages.DataResponse{
			CorrelationId: req.CorrelationId,
			DataType:      req.DataType,
			Payload:       messages.NewInstrumentsPayload(instruments),
			TsInit:        now,
		})
	}()

	return nil
}
