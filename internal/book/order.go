package book

// Side denotes which half of the book an order belongs to.
type Side int

const (
	Bid Side = iota
	Ask
)

var sideName = map[Side]string{
	Bid: "BID",
	Ask: "ASK",
}

func (s Side) String() string {
	return sideName[s]
}

// Opposite returns the side an incoming order executes against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is a single resting or incoming intent. Price is an integer
// number of ticks; it doubles as the level key, so it must never be a
// float. Quantity is the remaining size and is the only field the
// matching loop mutates.
//
// The list links and the level back-pointer make the order its own
// cancellation handle: the id index stores the *Order directly, so a
// cancel reaches the exact queue slot without scanning.
type Order struct {
	ID          uint64
	Side        Side
	Price       int64
	Quantity    int64
	ArrivalTime int64 // monotonic nanos, assigned by the caller

	level *priceLevel
	next  *Order
	prev  *Order
}
