package book

import "sync/atomic"

// Trade is one execution produced by the crossing loop. Price is the
// resting (maker) order's price: the aggressor takes the price
// improvement. MakerRemaining is the maker's remaining quantity after
// the execution, which reporting layers use to tell a partial fill
// from a full one.
type Trade struct {
	Price          int64
	Quantity       int64
	MakerID        uint64
	TakerID        uint64
	MakerRemaining int64
}

// Book is the matching core for a single instrument: two price-ordered
// sides, an id index for O(1) cancellation, and cached best prices.
//
// The Book itself is not synchronized. Mutating calls must be
// serialized by the owner (one writer per instrument); BestBid and
// BestAsk read atomically cached values and are safe from any
// goroutine.
type Book struct {
	bids  *bookSide
	asks  *bookSide
	index map[uint64]*Order

	// Cached best prices, refreshed after every mutation. Zero means
	// the side is empty; prices are strictly positive.
	bestBid atomic.Int64
	bestAsk atomic.Int64
}

func New() *Book {
	return &Book{
		bids:  newBookSide(Bid),
		asks:  newBookSide(Ask),
		index: make(map[uint64]*Order),
	}
}

// Submit runs an incoming limit order through the book. It validates
// fully before touching any structure, sweeps the opposite side while
// the spread is crossed, rests any remainder, and returns the trades
// produced, oldest first.
func (b *Book) Submit(id uint64, side Side, price, quantity, arrivalTime int64) ([]Trade, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, ok := b.index[id]; ok {
		return nil, ErrDuplicateOrderID
	}

	incoming := &Order{
		ID:          id,
		Side:        side,
		Price:       price,
		Quantity:    quantity,
		ArrivalTime: arrivalTime,
	}

	trades := b.match(incoming)
	if incoming.Quantity > 0 {
		b.rest(incoming)
	}
	b.refreshBest()
	return trades, nil
}

// match sweeps the opposite side while the incoming order is
// marketable. A level is fully drained oldest-first before the sweep
// moves to the next, worse price.
func (b *Book) match(incoming *Order) []Trade {
	opposite := b.side(incoming.Side.Opposite())

	var trades []Trade
	for incoming.Quantity > 0 {
		level, ok := opposite.best()
		if !ok || !crosses(incoming, level.price) {
			break
		}

		for incoming.Quantity > 0 && !level.empty() {
			resting := level.front()

			qty := min(resting.Quantity, incoming.Quantity)
			resting.Quantity -= qty
			incoming.Quantity -= qty
			level.totalQty -= qty

			trades = append(trades, Trade{
				Price:          level.price,
				Quantity:       qty,
				MakerID:        resting.ID,
				TakerID:        incoming.ID,
				MakerRemaining: resting.Quantity,
			})

			if resting.Quantity == 0 {
				delete(b.index, resting.ID)
				level.popFront()
			}
		}

		if level.empty() {
			opposite.remove(level)
		}
	}
	return trades
}

// crosses reports whether an incoming order is marketable against a
// resting level at levelPrice.
func crosses(incoming *Order, levelPrice int64) bool {
	if incoming.Side == Bid {
		return levelPrice <= incoming.Price
	}
	return levelPrice >= incoming.Price
}

// rest parks the unfilled remainder on its own side and registers it
// in the id index.
func (b *Book) rest(o *Order) {
	b.side(o.Side).getOrCreate(o.Price).pushBack(o)
	b.index[o.ID] = o
}

// Cancel withdraws a resting order: O(1) unlink by handle, level
// cleanup if it drained, index removal. No trade is produced and no
// other order's queue position moves.
func (b *Book) Cancel(id uint64) error {
	o, ok := b.index[id]
	if !ok {
		return ErrUnknownOrderID
	}

	level := o.level
	side := b.side(o.Side)
	level.unlink(o)
	if level.empty() {
		side.remove(level)
	}
	delete(b.index, id)

	b.refreshBest()
	return nil
}

// BestBid returns the cached best bid price, false when the bid side
// is empty. Never recomputed on the query path.
func (b *Book) BestBid() (int64, bool) {
	p := b.bestBid.Load()
	return p, p != 0
}

// BestAsk returns the cached best ask price, false when the ask side
// is empty.
func (b *Book) BestAsk() (int64, bool) {
	p := b.bestAsk.Load()
	return p, p != 0
}

// Orders returns the number of live resting orders across both sides.
func (b *Book) Orders() int {
	return len(b.index)
}

func (b *Book) side(s Side) *bookSide {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

// refreshBest mirrors the heads of both sides into the atomic caches.
// Runs after every mutation so queries stay branch-free.
func (b *Book) refreshBest() {
	if level, ok := b.bids.best(); ok {
		b.bestBid.Store(level.price)
	} else {
		b.bestBid.Store(0)
	}
	if level, ok := b.asks.best(); ok {
		b.bestAsk.Store(level.price)
	} else {
		b.bestAsk.Store(0)
	}
}
