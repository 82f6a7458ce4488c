package book

// priceLevel is the FIFO queue of orders resting at one exact price.
// Insertion order is time priority: pushBack on arrival, popFront to
// match, unlink for cancellation anywhere in the queue. All three are
// O(1). totalQty caches the sum of the queued orders' remaining
// quantities so depth snapshots never walk the queue.
type priceLevel struct {
	price    int64
	head     *Order
	tail     *Order
	totalQty int64
	count    int
}

func (l *priceLevel) empty() bool {
	return l.head == nil
}

// front returns the oldest order, the next to match.
func (l *priceLevel) front() *Order {
	return l.head
}

func (l *priceLevel) pushBack(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	o.level = l
	l.totalQty += o.Quantity
	l.count++
}

// popFront removes the head order. The caller has usually already
// traded its quantity down to zero, in which case totalQty is
// unchanged here; a non-zero head is debited in full.
func (l *priceLevel) popFront() *Order {
	o := l.head
	if o == nil {
		return nil
	}
	l.head = o.next
	if l.head == nil {
		l.tail = nil
	} else {
		l.head.prev = nil
	}
	o.next = nil
	o.level = nil
	l.totalQty -= o.Quantity
	l.count--
	return o
}

// unlink removes an arbitrary order from the queue by handle without
// touching any other order's position.
func (l *priceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	o.level = nil
	l.totalQty -= o.Quantity
	l.count--
}
