package restclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// VenueStatus is the response from GET /exchange/status.
type VenueStatus struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"estimated_resume_time,omitempty"`
}

// APIInstrument is the wire shape of one instrument definition.
type APIInstrument struct {
	Symbol         string  `json:"ticker"`
	Status         string  `json:"status"`
	PriceIncrement float64 `json:"tick_size"`
	SizeIncrement  float64 `json:"lot_size"`
}

// InstrumentsResponse is a page of instrument definitions.
type InstrumentsResponse struct {
	Instruments []APIInstrument `json:"markets"`
	Cursor      string          `json:"cursor"`
}

// GetInstrumentsOptions filters an instruments listing.
type GetInstrumentsOptions struct {
	Limit   int
	Cursor  string
	Status  string
	Symbols []string
}

// ToData converts the wire shape to the engine's Instrument type.
// tsInit is the ingress timestamp assigned by the caller.
func (a APIInstrument) ToData(venue identifiers.Venue, tsInit int64) data.Instrument {
	return data.Instrument{
		InstrumentId:   identifiers.NewInstrumentId(a.Symbol + "." + venue.String()),
		Venue:          venue,
		PriceIncrement: a.PriceIncrement,
		SizeIncrement:  a.SizeIncrement,
		TsEvent:        tsInit,
		TsInit:         tsInit,
	}
}

// GetVenueStatus fetches the venue's operational status.
func (c *Client) GetVenueStatus(ctx context.Context) (*VenueStatus, error) {
	var resp VenueStatus
	if err := c.get(ctx, "/exchange/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get venue status: %w", err)
	}
	return &resp, nil
}

// GetInstruments fetches a page of instrument definitions.
func (c *Client) GetInstruments(ctx context.Context, opts GetInstrumentsOptions) (*InstrumentsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if len(opts.Symbols) > 0 {
		query.Set("tickers", strings.Join(opts.Symbols, ","))
	}

	var resp InstrumentsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get instruments: %w", err)
	}

	return &resp, nil
}

// GetAllInstruments fetches all instruments matching opts by paginating
// through results. opts.Limit caps the page size; zero uses the venue
// maximum.
func (c *Client) GetAllInstruments(ctx context.Context, opts GetInstrumentsOptions) ([]APIInstrument, error) {
	var all []APIInstrument
	if opts.Limit == 0 {
		opts.Limit = 1000
	}

	for {
		resp, err := c.GetInstruments(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Instruments...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return all, nil
}

// GetInstrument fetches a single instrument by symbol.
func (c *Client) GetInstrument(ctx context.Context, symbol string) (*APIInstrument, error) {
	var resp struct {
		Instrument APIInstrument `json:"market"`
	}
	if err := c.get(ctx, "/markets/"+symbol, nil, &resp); err != nil {
		return nil, fmt.Errorf("get instrument %s: %w", symbol, err)
	}
	return &resp.Instrument, nil
}
