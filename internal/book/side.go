package book

import "github.com/tidwall/btree"

// bookSide holds one half of the book: price levels keyed by price,
// ordered best-first. Bids sort greatest price first, asks least
// first, so Min is always the best level on either side.
type bookSide struct {
	levels *btree.BTreeG[*priceLevel]
}

func newBookSide(side Side) *bookSide {
	var less func(a, b *priceLevel) bool
	if side == Bid {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	} else {
		less = func(a, b *priceLevel) bool { return a.price < b.price }
	}
	return &bookSide{levels: btree.NewBTreeG(less)}
}

// best returns the first level in side order, false when the side is
// empty.
func (s *bookSide) best() (*priceLevel, bool) {
	return s.levels.MinMut()
}

// getOrCreate returns the level at price, creating an empty one if the
// price has no resting orders yet.
func (s *bookSide) getOrCreate(price int64) *priceLevel {
	// The comparator only reads price, so a stack value suffices for
	// the lookup.
	if level, ok := s.levels.GetMut(&priceLevel{price: price}); ok {
		return level
	}
	level := &priceLevel{price: price}
	s.levels.Set(level)
	return level
}

// remove deletes a drained level from the side.
func (s *bookSide) remove(level *priceLevel) {
	s.levels.Delete(level)
}

func (s *bookSide) len() int {
	return s.levels.Len()
}

// scan visits levels best-first until fn returns false.
func (s *bookSide) scan(fn func(*priceLevel) bool) {
	s.levels.Scan(fn)
}
