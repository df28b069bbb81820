package adapter

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"

	"github.com/gradascent/nautilus-trader/internal/connection"
	"github.com/gradascent/nautilus-trader/internal/data"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
)

// foldCaser canonicalizes channel names before dispatch: venues disagree
// on casing ("Quote", "QUOTE", "quote") and Unicode case-folding is the
// comparison that treats them all as the same channel.
var foldCaser = cases.Fold()

// Wire formats for the venue's data messages. The envelope is
// {"type": ..., "sid": ..., "seq": ..., "msg": {...}} with a per-channel
// msg shape.

type quoteWire struct {
	Instrument string  `json:"instrument"`
	BidPrice   float64 `json:"bid_price"`
	AskPrice   float64 `json:"ask_price"`
	BidSize    float64 `json:"bid_size"`
	AskSize    float64 `json:"ask_size"`
	Ts         int64   `json:"ts"`
}

type tradeWire struct {
	Instrument string  `json:"instrument"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	TakerSide  string  `json:"taker_side"`
	TradeID    string  `json:"trade_id"`
	Ts         int64   `json:"ts"`
}

type deltaWire struct {
	Instrument string  `json:"instrument"`
	Action     string  `json:"action"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	Flags      uint8   `json:"flags"`
	Ts         int64   `json:"ts"`
}

type depthWire struct {
	Instrument string       `json:"instrument"`
	Bids       [][2]float64 `json:"bids"`
	Asks       [][2]float64 `json:"asks"`
	Ts         int64        `json:"ts"`
}

// decodeMessage parses one raw WebSocket message into a Data event.
// Command responses (subscribe acks, errors) return ok=false with no
// error; they are control traffic, not data.
func decodeMessage(raw connection.TimestampedMessage) (data.Data, bool, error) {
	var envelope connection.DataMessage
	if err := json.Unmarshal(raw.Data, &envelope); err != nil {
		return data.Data{}, false, fmt.Errorf("parse envelope: %w", err)
	}

	tsInit := raw.ReceivedAt.UnixNano()

	switch foldCaser.String(envelope.Type) {
	case "quote", "ticker":
		var w quoteWire
		if err := json.Unmarshal(envelope.Msg, &w); err != nil {
			return data.Data{}, false, fmt.Errorf("parse quote: %w", err)
		}
		return data.NewQuote(data.QuoteTick{
			InstrumentId: identifiers.NewInstrumentId(w.Instrument),
			BidPrice:     w.BidPrice,
			AskPrice:     w.AskPrice,
			BidSize:      w.BidSize,
			AskSize:      w.AskSize,
			TsEvent:      w.Ts,
			TsInit:       tsInit,
		}), true, nil

	case "trade":
		var w tradeWire
		if err := json.Unmarshal(envelope.Msg, &w); err != nil {
			return data.Data{}, false, fmt.Errorf("parse trade: %w", err)
		}
		return data.NewTrade(data.TradeTick{
			InstrumentId:  identifiers.NewInstrumentId(w.Instrument),
			Price:         w.Price,
			Size:          w.Size,
			AggressorSide: sideFromWire(w.TakerSide),
			TradeId:       w.TradeID,
			TsEvent:       w.Ts,
			TsInit:        tsInit,
		}), true, nil

	case "orderbook_delta":
		var w deltaWire
		if err := json.Unmarshal(envelope.Msg, &w); err != nil {
			return data.Data{}, false, fmt.Errorf("parse delta: %w", err)
		}
		return data.NewDelta(data.OrderBookDelta{
			InstrumentId: identifiers.NewInstrumentId(w.Instrument),
			Action:       actionFromWire(w.Action),
			Side:         sideFromWire(w.Side),
			Price:        w.Price,
			Size:         w.Size,
			Flags:        w.Flags,
			Sequence:     uint64(envelope.Seq),
			TsEvent:      w.Ts,
			TsInit:       tsInit,
		}), true, nil

	case "orderbook_snapshot":
		var w depthWire
		if err := json.Unmarshal(envelope.Msg, &w); err != nil {
			return data.Data{}, false, fmt.Errorf("parse snapshot: %w", err)
		}
		dep := data.OrderBookDepth10{
			InstrumentId: identifiers.NewInstrumentId(w.Instrument),
			Sequence:     uint64(envelope.Seq),
			TsEvent:      w.Ts,
			TsInit:       tsInit,
		}
		for i, lvl := range w.Bids {
			if i >= 10 {
				break
			}
			dep.Bids[i] = data.BookLevel{Price: lvl[0], Size: lvl[1]}
		}
		for i, lvl := range w.Asks {
			if i >= 10 {
				break
			}
			dep.Asks[i] = data.BookLevel{Price: lvl[0], Size: lvl[1]}
		}
		return data.NewDepth10(dep), true, nil

	case "subscribed", "unsubscribed", "ok", "error":
		// Control traffic handled by the command response path.
		return data.Data{}, false, nil

	default:
		return data.Data{}, false, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}

func sideFromWire(s string) data.Side {
	switch foldCaser.String(s) {
	case "buy", "bid", "yes":
		return data.Buy
	case "sell", "ask", "no":
		return data.Sell
	default:
		return data.NoSide
	}
}

func actionFromWire(s string) data.BookAction {
	switch foldCaser.String(s) {
	case "add":
		return data.Add
	case "delete":
		return data.Delete
	case "clear":
		return data.Clear
	default:
		return data.Update
	}
}

// channelForDataType maps a subscription's data type to the venue
// channel name that carries it.
func channelForDataType(typeName string) (string, bool) {
	switch typeName {
	case "QuoteTick":
		return "quote", true
	case "TradeTick":
		return "trade", true
	case "OrderBookDelta":
		return "orderbook_delta", true
	case "OrderBookDepth10":
		return "orderbook_snapshot", true
	default:
		return "", false
	}
}
