package restclient

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gradascent/nautilus-trader/internal/auth"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

func TestGetVenueStatus(t *testing.T) {
	t.Run("active venue", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/exchange/status" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(VenueStatus{
				ExchangeActive: true,
				TradingActive:  true,
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		status, err := c.GetVenueStatus(context.Background())
		if err != nil {
			t.Fatalf("GetVenueStatus failed: %v", err)
		}
		if !status.ExchangeActive || !status.TradingActive {
			t.Errorf("status = %+v, want active", status)
		}
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		_, err := c.GetVenueStatus(context.Background())
		if err == nil {
			t.Fatal("expected error for 403 response")
		}
		apiErr, ok := err.(*APIError)
		if !ok {
			// GetVenueStatus wraps, so unwrap via string check.
			if !strings.Contains(err.Error(), "403") {
				t.Errorf("error should carry status code, got %v", err)
			}
			return
		}
		if apiErr.StatusCode != http.StatusForbidden {
			t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
		}
	})
}

func TestGetAllInstruments(t *testing.T) {
	t.Run("paginates through cursor", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := calls.Add(1)
			if r.URL.Path != "/markets" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			switch n {
			case 1:
				if r.URL.Query().Get("cursor") != "" {
					t.Error("first page should have no cursor")
				}
				json.NewEncoder(w).Encode(InstrumentsResponse{
					Instruments: []APIInstrument{{Symbol: "AUDUSD"}, {Symbol: "EURUSD"}},
					Cursor:      "page-2",
				})
			default:
				if got := r.URL.Query().Get("cursor"); got != "page-2" {
					t.Errorf("cursor = %q, want page-2", got)
				}
				json.NewEncoder(w).Encode(InstrumentsResponse{
					Instruments: []APIInstrument{{Symbol: "GBPUSD"}},
				})
			}
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		instruments, err := c.GetAllInstruments(context.Background(), GetInstrumentsOptions{Status: "open"})
		if err != nil {
			t.Fatalf("GetAllInstruments failed: %v", err)
		}
		if len(instruments) != 3 {
			t.Fatalf("got %d instruments, want 3", len(instruments))
		}
		if instruments[2].Symbol != "GBPUSD" {
			t.Errorf("last symbol = %q, want GBPUSD", instruments[2].Symbol)
		}
	})

	t.Run("retries 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(InstrumentsResponse{
				Instruments: []APIInstrument{{Symbol: "AUDUSD"}},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(2, time.Millisecond))
		instruments, err := c.GetAllInstruments(context.Background(), GetInstrumentsOptions{})
		if err != nil {
			t.Fatalf("GetAllInstruments failed after retry: %v", err)
		}
		if len(instruments) != 1 {
			t.Fatalf("got %d instruments, want 1", len(instruments))
		}
		if calls.Load() != 2 {
			t.Errorf("server called %d times, want 2", calls.Load())
		}
	})

	t.Run("4xx is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
		_, err := c.GetAllInstruments(context.Background(), GetInstrumentsOptions{})
		if err == nil {
			t.Fatal("expected error for 400 response")
		}
		if calls.Load() != 1 {
			t.Errorf("server called %d times, want 1 (no retry on 4xx)", calls.Load())
		}
	})
}

func TestSignedRequestHeaders(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := auth.NewSigner("test-key-id", key)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(auth.HeaderKey); got != "test-key-id" {
			t.Errorf("access key header = %q, want test-key-id", got)
		}
		if r.Header.Get(auth.HeaderTimestamp) == "" {
			t.Error("timestamp header missing")
		}
		if r.Header.Get(auth.HeaderSignature) == "" {
			t.Error("signature header missing")
		}
		json.NewEncoder(w).Encode(VenueStatus{ExchangeActive: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, signer)
	if _, err := c.GetVenueStatus(context.Background()); err != nil {
		t.Fatalf("GetVenueStatus failed: %v", err)
	}
}

func TestAPIInstrumentToData(t *testing.T) {
	venue := identifiers.NewVenue("KALSHI")
	wire := APIInstrument{Symbol: "AUDUSD", PriceIncrement: 0.01, SizeIncrement: 1}

	ins := wire.ToData(venue, 12345)

	if got := ins.InstrumentId.String(); got != "AUDUSD.KALSHI" {
		t.Errorf("InstrumentId = %q, want AUDUSD.KALSHI", got)
	}
	if ins.Venue != venue {
		t.Errorf("Venue = %v, want %v", ins.Venue, venue)
	}
	if ins.TsInit != 12345 || ins.TsEvent != 12345 {
		t.Errorf("timestamps = (%d, %d), want (12345, 12345)", ins.TsEvent, ins.TsInit)
	}
}
