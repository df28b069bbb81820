package engine

import (
	"testing"
	"time"

	"github.com/gradascent/nautilus-trader/internal/cache"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/messages"
	"github.com/gradascent/nautilus-trader/internal/msgbus"
	"github.com/gradascent/nautilus-trader/internal/synthetic"
)

func delta(iid identifiers.InstrumentId, price float64, flags uint8, ts int64) data.OrderBookDelta {
	return data.OrderBookDelta{
		InstrumentId: iid,
		Action:       data.Add,
		Side:         data.Buy,
		Price:        price,
		Size:         10,
		Flags:        flags,
		TsEvent:      ts,
		TsInit:       ts,
	}
}

func TestDeltaBuffering_FlushesOnLastFlag(t *testing.T) {
	e := newTestEngine() // DefaultConfig: BufferDeltas=true
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")

	received := make(chan any, 4)
	e.bus.Subscribe(e.switchboard.Deltas(iid), func(msg any) { received <- msg })

	e.Process(data.NewDelta(delta(iid, 0.51, 0, 1)))
	e.Process(data.NewDelta(delta(iid, 0.52, 0, 2)))

	select {
	case msg := <-received:
		t.Fatalf("partial fragments should not publish, got %v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	e.Process(data.NewDelta(delta(iid, 0.53, data.FlagLast, 3)))

	select {
	case msg := <-received:
		dd, ok := msg.(data.OrderBookDeltas)
		if !ok {
			t.Fatalf("published %T, want OrderBookDeltas", msg)
		}
		if len(dd.Deltas) != 3 {
			t.Fatalf("flushed %d deltas, want 3", len(dd.Deltas))
		}
		for i, want := range []float64{0.51, 0.52, 0.53} {
			if dd.Deltas[i].Price != want {
				t.Errorf("delta %d price = %v, want %v (original order)", i, dd.Deltas[i].Price, want)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("F_LAST did not flush the buffered batch")
	}

	// Buffer must be empty afterward: a fresh fragment starts a new batch.
	if len(e.deltaBuffers[iid]) != 0 {
		t.Errorf("buffer holds %d deltas after flush, want 0", len(e.deltaBuffers[iid]))
	}

	e.Process(data.NewDelta(delta(iid, 0.60, data.FlagLast, 4)))
	select {
	case msg := <-received:
		dd, ok := msg.(data.OrderBookDeltas)
		if !ok || len(dd.Deltas) != 1 {
			t.Fatalf("second batch = %v, want a single-delta Deltas event", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("second batch never flushed")
	}
}

func TestDeltaUnbuffered_PublishesEachFragment(t *testing.T) {
	e := New(nil, cache.NewMemory(), msgbus.New(16, nil), Config{BufferDeltas: false}, nil)
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")

	received := make(chan any, 2)
	e.bus.Subscribe(e.switchboard.Deltas(iid), func(msg any) { received <- msg })

	e.Process(data.NewDelta(delta(iid, 0.51, 0, 1)))

	select {
	case msg := <-received:
		if _, ok := msg.(data.OrderBookDelta); !ok {
			t.Fatalf("published %T, want a single OrderBookDelta", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("unbuffered delta was not published")
	}
}

func TestQuoteIsCachedBeforePublish(t *testing.T) {
	e := newTestEngine()
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")

	cachedAtPublish := make(chan bool, 1)
	e.bus.Subscribe(e.switchboard.Quotes(iid), func(msg any) {
		_, ok := e.cache.LastQuote(e.ctx(), iid)
		cachedAtPublish <- ok
	})

	e.Process(data.NewQuote(data.QuoteTick{InstrumentId: iid, BidPrice: 0.5, AskPrice: 0.51}))

	select {
	case ok := <-cachedAtPublish:
		if !ok {
			t.Error("subscriber observed the publish before the cache write")
		}
	case <-time.After(time.Second):
		t.Fatal("quote publish never observed")
	}
}

func TestRequestData_RoutesStrictlyByClientId(t *testing.T) {
	e := newTestEngine()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	adapter := newFakeAdapter(c1, v1)
	e.RegisterClient(adapter, &v1)

	e.RequestData(messages.DataRequest{ClientId: c1, Venue: v1, DataType: messages.DataType{TypeName: "InstrumentAny"}})
	if len(adapter.backend.requests) != 1 {
		t.Fatalf("adapter received %d requests, want 1", len(adapter.backend.requests))
	}

	// Unknown client_id: dropped, never routed via venue or default.
	e.SetDefaultClient(adapter)
	e.RequestData(messages.DataRequest{ClientId: identifiers.NewClientId("UNKNOWN"), Venue: v1, DataType: messages.DataType{TypeName: "InstrumentAny"}})
	if len(adapter.backend.requests) != 1 {
		t.Error("request with unknown client_id should not fall back to routing or default")
	}
}

func TestResponse_BulkInsertsKnownKinds(t *testing.T) {
	e := newTestEngine()
	a := identifiers.NewInstrumentId("A.SIM")
	b := identifiers.NewInstrumentId("B.SIM")

	e.Response(messages.DataResponse{
		DataType: messages.DataType{TypeName: "QuoteTick"},
		Payload: messages.NewQuotesPayload([]data.QuoteTick{
			{InstrumentId: a, BidPrice: 1.0, AskPrice: 1.1},
			{InstrumentId: b, BidPrice: 2.0, AskPrice: 2.1},
		}),
	})

	if _, ok := e.cache.LastQuote(e.ctx(), a); !ok {
		t.Error("first quote of the response payload not inserted")
	}
	if _, ok := e.cache.LastQuote(e.ctx(), b); !ok {
		t.Error("second quote of the response payload not inserted")
	}

	e.Response(messages.DataResponse{
		DataType: messages.DataType{TypeName: "InstrumentAny"},
		Payload:  messages.NewInstrumentsPayload([]data.Instrument{{InstrumentId: a}}),
	})
	if _, ok := e.cache.Instrument(e.ctx(), a); !ok {
		t.Error("instrument of the response payload not inserted")
	}
}

func TestManagedBookApplication(t *testing.T) {
	e := newTestEngine()
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")

	// No managed book: the delta passes through untouched.
	e.Process(data.NewDelta(delta(iid, 0.51, data.FlagLast, 1)))
	if e.cache.HasBook(iid) {
		t.Fatal("processing a delta must not implicitly create a managed book")
	}

	// Managed book: deltas apply.
	book := e.cache.Book(iid)
	e.Process(data.NewDelta(delta(iid, 0.52, data.FlagLast, 2)))

	best, ok := book.BestBid()
	if !ok || best.Price != 0.52 {
		t.Errorf("BestBid = %+v, %v, want price 0.52 applied", best, ok)
	}

	// Depth snapshot replaces the book wholesale.
	dep := data.OrderBookDepth10{InstrumentId: iid, TsEvent: 3, TsInit: 3}
	dep.Bids[0] = data.BookLevel{Price: 0.60, Size: 5}
	dep.Asks[0] = data.BookLevel{Price: 0.61, Size: 5}
	e.Process(data.NewDepth10(dep))

	best, ok = book.BestBid()
	if !ok || best.Price != 0.60 {
		t.Errorf("BestBid after depth = %+v, %v, want price 0.60", best, ok)
	}
}

func TestSyntheticTradeEmission(t *testing.T) {
	e := newTestEngine()
	a := identifiers.NewInstrumentId("A.SIM")
	b := identifiers.NewInstrumentId("B.SIM")
	synthId := identifiers.NewInstrumentId("AB-AVG.SYNTH")

	err := e.RegisterSynthetic(&synthetic.Instrument{
		InstrumentId: synthId,
		Components:   []identifiers.InstrumentId{a, b},
		PriceType:    synthetic.PriceTypeTrade,
		Formula: func(legs map[identifiers.InstrumentId]float64) (float64, bool) {
			return (legs[a] + legs[b]) / 2, true
		},
	})
	if err != nil {
		t.Fatalf("RegisterSynthetic: %v", err)
	}

	received := make(chan any, 1)
	e.bus.Subscribe(e.switchboard.Trades(synthId), func(msg any) { received <- msg })

	// Only one leg fresh: no emission.
	e.Process(data.NewTrade(data.TradeTick{InstrumentId: a, Price: 1.0}))
	select {
	case <-received:
		t.Fatal("synthetic emitted with a stale leg")
	case <-time.After(50 * time.Millisecond):
	}

	// Both legs fresh: synthetic trade published and cached.
	e.Process(data.NewTrade(data.TradeTick{InstrumentId: b, Price: 3.0}))
	select {
	case msg := <-received:
		tr, ok := msg.(data.TradeTick)
		if !ok {
			t.Fatalf("published %T, want TradeTick", msg)
		}
		if tr.Price != 2.0 {
			t.Errorf("synthetic price = %v, want 2.0", tr.Price)
		}
	case <-time.After(time.Second):
		t.Fatal("synthetic trade never published")
	}

	cached, ok := e.cache.LastTrade(e.ctx(), synthId)
	if !ok || cached.Price != 2.0 {
		t.Errorf("synthetic trade not cached, got %+v, %v", cached, ok)
	}
}

func TestRegisteredClients_RoundTrip(t *testing.T) {
	e := newTestEngine()
	before := append([]identifiers.ClientId(nil), e.RegisteredClients()...)

	c1 := identifiers.NewClientId("C1")
	adapter := newFakeAdapter(c1, identifiers.NewVenue("V1"))
	e.RegisterClient(adapter, nil)
	if len(e.RegisteredClients()) != len(before)+1 {
		t.Fatal("RegisterClient did not add to RegisteredClients")
	}

	e.DeregisterClient(c1)
	after := e.RegisteredClients()
	if len(after) != len(before) {
		t.Errorf("RegisteredClients after round trip = %v, want %v", after, before)
	}

	// Deregistering an unknown id is a no-op.
	e.DeregisterClient(identifiers.NewClientId("NEVER-REGISTERED"))
	if len(e.RegisteredClients()) != len(before) {
		t.Error("deregistering an unknown client_id changed the registry")
	}
}

func TestGetClient_RoutingFallbackScenario(t *testing.T) {
	e := newTestEngine()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	adapter := newFakeAdapter(c1, v1)
	e.RegisterClient(adapter, &v1)

	got, ok := e.GetClient(identifiers.NewClientId("C2"), v1)
	if !ok || got.ClientId() != c1 {
		t.Errorf("GetClient(C2, V1) = %v, %v, want the C1 adapter via routing", got, ok)
	}

	if _, ok := e.GetClient(identifiers.NewClientId("C2"), identifiers.NewVenue("V2")); ok {
		t.Error("GetClient(C2, V2) should resolve nothing with no default set")
	}
}
