package msgbus

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New(16, nil)
	sb := NewSwitchboard()
	iid := identifiers.NewInstrumentId("AUDUSD.SIM")
	topic := sb.Quotes(iid)

	received := make(chan any, 1)
	bus.Subscribe(topic, func(msg any) { received <- msg })

	bus.Publish(topic, "quote-event")

	select {
	case msg := <-received:
		if msg != "quote-event" {
			t.Errorf("received %v, want quote-event", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestRegisterSend_DuplicateEndpointErrors(t *testing.T) {
	bus := New(16, nil)
	if err := bus.Register(EndpointDataEngineExecute, func(msg any) {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := bus.Register(EndpointDataEngineExecute, func(msg any) {}); err == nil {
		t.Fatal("Register should reject a duplicate endpoint id")
	}
}

func TestSend_UnknownEndpointErrors(t *testing.T) {
	bus := New(16, nil)
	if err := bus.Send("nope", "msg"); err == nil {
		t.Fatal("Send to an unregistered endpoint should error")
	}
}

func TestSendResponse_DeliversToRegisteredCorrelation(t *testing.T) {
	bus := New(16, nil)
	id := uuid.New()

	received := make(chan any, 1)
	bus.RegisterResponseHandler(id, func(msg any) { received <- msg })
	bus.SendResponse(id, "response-payload")

	select {
	case msg := <-received:
		if msg != "response-payload" {
			t.Errorf("received %v, want response-payload", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response delivery")
	}
}

func TestSendResponse_UnknownCorrelationIsDropped(t *testing.T) {
	bus := New(16, nil)
	// Should not panic despite no registered handler.
	bus.SendResponse(uuid.New(), "orphaned")
}

func TestSwitchboard_TopicsAreStableAndDistinct(t *testing.T) {
	sb := NewSwitchboard()
	a := identifiers.NewInstrumentId("A.SIM")
	b := identifiers.NewInstrumentId("B.SIM")

	if sb.Quotes(a) == sb.Quotes(b) {
		t.Error("distinct instruments should mint distinct quote topics")
	}
	if sb.Quotes(a) != sb.Quotes(a) {
		t.Error("the same instrument should mint the same quote topic each time")
	}
	if sb.Quotes(a) == sb.Trades(a) {
		t.Error("quote and trade topics for the same instrument should differ")
	}
}
