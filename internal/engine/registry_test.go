package engine

import (
	"testing"

	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

func TestRegistry_RegisterAndGetByClientId(t *testing.T) {
	r := NewRegistry()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	a := newFakeAdapter(c1, v1)

	r.Register(a, nil)

	got, ok := r.GetByClientId(c1)
	if !ok || got != ClientAdapter(a) {
		t.Fatalf("GetByClientId = %v, %v", got, ok)
	}
}

func TestRegistry_RoutingFallback(t *testing.T) {
	r := NewRegistry()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	a := newFakeAdapter(c1, v1)

	r.Register(a, &v1)

	got, ok := r.Get(identifiers.NewClientId("UNKNOWN"), v1)
	if !ok || got != ClientAdapter(a) {
		t.Fatalf("Get via routing = %v, %v", got, ok)
	}
}

func TestRegistry_DefaultFallback(t *testing.T) {
	r := NewRegistry()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	a := newFakeAdapter(c1, v1)
	r.Register(a, nil)
	r.SetDefault(a)

	got, ok := r.Get(identifiers.NewClientId("UNKNOWN"), identifiers.NewVenue("UNKNOWN"))
	if !ok || got != ClientAdapter(a) {
		t.Fatalf("Get via default = %v, %v", got, ok)
	}
}

func TestRegistry_DeregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	if r.Deregister(identifiers.NewClientId("NEVER-REGISTERED")) {
		t.Error("Deregister on unknown id should return false")
	}
}

func TestRegistry_DeregisterRemovesRoutingAndDefault(t *testing.T) {
	r := NewRegistry()
	c1 := identifiers.NewClientId("C1")
	v1 := identifiers.NewVenue("V1")
	a := newFakeAdapter(c1, v1)
	r.Register(a, &v1)
	r.SetDefault(a)

	if !r.Deregister(c1) {
		t.Fatal("Deregister should return true for a registered id")
	}

	if _, ok := r.GetByClientId(c1); ok {
		t.Error("adapter should be gone after Deregister")
	}
	if _, ok := r.Get(identifiers.NewClientId("ANY"), v1); ok {
		t.Error("routing entry should be gone after Deregister")
	}
}

func TestRegistry_AllPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	a1 := newFakeAdapter(identifiers.NewClientId("C1"), identifiers.NewVenue("V1"))
	a2 := newFakeAdapter(identifiers.NewClientId("C2"), identifiers.NewVenue("V2"))
	r.Register(a1, nil)
	r.Register(a2, nil)

	all := r.All()
	if len(all) != 2 || all[0].ClientId() != a1.ClientId() || all[1].ClientId() != a2.ClientId() {
		t.Fatalf("All() = %+v, want [C1, C2]", all)
	}
}
