package book

import (
	"testing"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

func TestApplyDelta_AddAndBest(t *testing.T) {
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	b := New(iid)

	if err := b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.65, Size: 10}); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if err := b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.64, Size: 5}); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	best, ok := b.BestBid()
	if !ok {
		t.Fatal("BestBid() = false, want true")
	}
	if best.Price != 0.65 {
		t.Errorf("BestBid().Price = %v, want 0.65", best.Price)
	}
}

func TestApplyDelta_DeleteRemovesLevel(t *testing.T) {
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	b := New(iid)
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Sell, Price: 0.66, Size: 3})
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Delete, Side: data.Sell, Price: 0.66})

	if _, ok := b.BestAsk(); ok {
		t.Error("BestAsk() = true after Delete, want false")
	}
}

func TestApplyDelta_ClearEmptiesBothSides(t *testing.T) {
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	b := New(iid)
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.65, Size: 10})
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Sell, Price: 0.66, Size: 3})
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Clear})

	if _, ok := b.BestBid(); ok {
		t.Error("BestBid() = true after Clear, want false")
	}
	if _, ok := b.BestAsk(); ok {
		t.Error("BestAsk() = true after Clear, want false")
	}
}

func TestApplyDelta_WrongInstrumentErrors(t *testing.T) {
	b := New(identifiers.NewInstrumentId("AUDUSD.SIM"))
	err := b.ApplyDelta(data.OrderBookDelta{InstrumentId: identifiers.NewInstrumentId("BTCUSD.SIM"), Action: data.Add})
	if err == nil {
		t.Fatal("ApplyDelta with mismatched instrument should error")
	}
}

func TestApplyDepth10_ReplacesBothSides(t *testing.T) {
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	b := New(iid)
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.1, Size: 1})

	depth := data.OrderBookDepth10{InstrumentId: iid}
	depth.Bids[0] = data.BookLevel{Price: 0.7, Size: 20}
	depth.Asks[0] = data.BookLevel{Price: 0.71, Size: 15}

	if err := b.ApplyDepth10(depth); err != nil {
		t.Fatalf("ApplyDepth10: %v", err)
	}

	best, ok := b.BestBid()
	if !ok || best.Price != 0.7 {
		t.Errorf("BestBid() = %+v, %v, want {0.7 ...}, true", best, ok)
	}
	bids, asks := b.Snapshot(10)
	if len(bids) != 1 || len(asks) != 1 || asks[0].Price != 0.71 {
		t.Errorf("Snapshot(10) = %+v, %+v, want one bid and one ask at 0.71", bids, asks)
	}
}

func TestSnapshot_OrdersByPrice(t *testing.T) {
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	b := New(iid)
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.5, Size: 1})
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.6, Size: 1})
	b.ApplyDelta(data.OrderBookDelta{InstrumentId: iid, Action: data.Add, Side: data.Buy, Price: 0.55, Size: 1})

	bids, _ := b.Snapshot(10)
	if len(bids) != 3 || bids[0].Price != 0.6 || bids[2].Price != 0.5 {
		t.Errorf("Snapshot bids = %+v, want descending 0.6,0.55,0.5", bids)
	}
}
