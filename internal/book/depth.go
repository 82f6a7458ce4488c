package book

import (
	"fmt"
	"strings"
)

// Level is one aggregated price level in a depth snapshot.
type Level struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

// Depth is a point-in-time snapshot of both sides, bids and asks each
// best-first. Quantities come from the levels' cached totals, so
// taking a snapshot never walks the order queues.
type Depth struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// Depth snapshots the book. Must be serialized with mutations like any
// other structural read.
func (b *Book) Depth() Depth {
	d := Depth{
		Bids: make([]Level, 0, b.bids.len()),
		Asks: make([]Level, 0, b.asks.len()),
	}
	b.bids.scan(func(l *priceLevel) bool {
		d.Bids = append(d.Bids, Level{Price: l.price, Quantity: l.totalQty, Orders: l.count})
		return true
	})
	b.asks.scan(func(l *priceLevel) bool {
		d.Asks = append(d.Asks, Level{Price: l.price, Quantity: l.totalQty, Orders: l.count})
		return true
	})
	return d
}

// String renders the snapshot as a market check: asks top-down, then
// bids, one line per level.
func (d Depth) String() string {
	var sb strings.Builder

	sb.WriteString("--- Market Check ---\n")
	sb.WriteString("ASKS:\n")
	for i := len(d.Asks) - 1; i >= 0; i-- {
		level := d.Asks[i]
		fmt.Fprintf(&sb, "  %d\tVolume: %d\n", level.Price, level.Quantity)
	}
	sb.WriteString("--------------------\n")
	sb.WriteString("BIDS:\n")
	for _, level := range d.Bids {
		fmt.Fprintf(&sb, "  %d\tVolume: %d\n", level.Price, level.Quantity)
	}
	return sb.String()
}
