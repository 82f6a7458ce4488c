package engine

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/serzhan-kenesbek/order-book/internal/book"
	"github.com/serzhan-kenesbek/order-book/internal/clock"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// OrderRequest is a limit order submission. The id is chosen by the
// client and must be unused while the order is live.
type OrderRequest struct {
	ID       uint64
	Side     book.Side
	Price    int64
	Quantity int64
}

// Quote is the cached top of book for one instrument.
type Quote struct {
	BidPrice int64
	HasBid   bool
	AskPrice int64
	HasAsk   bool
}

// instrument pairs a book with the mutex that serializes its writers.
// Price-time priority only means something under a total order of
// operations, so every mutation for one symbol goes through this lock.
type instrument struct {
	mu sync.Mutex
	b  *book.Book
}

// Engine owns one matching book per configured instrument. Instruments
// share nothing; operations on different symbols never contend.
type Engine struct {
	clk      *clock.Monotonic
	books    map[string]*instrument
	reporter Reporter
	log      zerolog.Logger
}

func New(log zerolog.Logger, symbols ...string) *Engine {
	books := make(map[string]*instrument, len(symbols))
	for _, sym := range symbols {
		books[sym] = &instrument{b: book.New()}
	}
	return &Engine{
		clk:   clock.NewMonotonic(),
		books: books,
		log:   log.With().Str("component", "engine").Logger(),
	}
}

// SetReporter installs the execution report sink. Must be called
// before the first submission.
func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

// Symbols returns the configured instruments, sorted.
func (e *Engine) Symbols() []string {
	symbols := make([]string, 0, len(e.books))
	for sym := range e.books {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Submit stamps the order's arrival time, runs it through the
// instrument's book under the instrument lock, and reports any
// executions. The stamp is taken before the lock so queueing on a busy
// instrument cannot run the core against an unstamped order.
func (e *Engine) Submit(symbol string, req OrderRequest) ([]Execution, error) {
	inst, ok := e.books[symbol]
	if !ok {
		return nil, ErrUnknownSymbol
	}

	arrival := e.clk.Now()

	inst.mu.Lock()
	trades, err := inst.b.Submit(req.ID, req.Side, req.Price, req.Quantity, arrival)
	inst.mu.Unlock()
	if err != nil {
		e.log.Debug().
			Str("symbol", symbol).
			Uint64("order_id", req.ID).
			Err(err).
			Msg("submission rejected")
		return nil, err
	}

	e.log.Debug().
		Str("symbol", symbol).
		Uint64("order_id", req.ID).
		Stringer("side", req.Side).
		Int64("price", req.Price).
		Int64("quantity", req.Quantity).
		Int("trades", len(trades)).
		Msg("order accepted")

	execs := make([]Execution, len(trades))
	for i, trade := range trades {
		execs[i] = NewExecution(symbol, arrival, trade)
	}
	e.reportExecutions(execs)
	return execs, nil
}

// Cancel withdraws a resting order from the symbol's book.
func (e *Engine) Cancel(symbol string, id uint64) error {
	inst, ok := e.books[symbol]
	if !ok {
		return ErrUnknownSymbol
	}

	inst.mu.Lock()
	err := inst.b.Cancel(id)
	inst.mu.Unlock()
	if err != nil {
		return err
	}

	e.log.Debug().
		Str("symbol", symbol).
		Uint64("order_id", id).
		Msg("order cancelled")
	return nil
}

// Best returns the cached top of book. Served from the book's atomic
// caches, so it never waits on an in-flight mutation.
func (e *Engine) Best(symbol string) (Quote, error) {
	inst, ok := e.books[symbol]
	if !ok {
		return Quote{}, ErrUnknownSymbol
	}

	var q Quote
	q.BidPrice, q.HasBid = inst.b.BestBid()
	q.AskPrice, q.HasAsk = inst.b.BestAsk()
	return q, nil
}

// Depth snapshots the symbol's book under the instrument lock; the
// structural walk must not interleave with a mutation.
func (e *Engine) Depth(symbol string) (book.Depth, error) {
	inst, ok := e.books[symbol]
	if !ok {
		return book.Depth{}, ErrUnknownSymbol
	}

	inst.mu.Lock()
	d := inst.b.Depth()
	inst.mu.Unlock()
	return d, nil
}

// reportExecutions fans executions out to the reporter. Reporting is
// best effort: a failed delivery is logged and never unwinds a match
// that has already mutated the book.
//
// Delivery preserves match order within one submit call only. The
// instrument lock is already released here, so reports from concurrent
// submits on the same symbol may interleave, and tied ExecutedAt
// stamps do not order them; consumers needing a total order must
// sequence on their side.
func (e *Engine) reportExecutions(execs []Execution) {
	if e.reporter == nil {
		return
	}
	for _, exec := range execs {
		if err := e.reporter.ReportTrade(exec); err != nil {
			e.log.Error().
				Err(err).
				Str("symbol", exec.Symbol).
				Str("exec_id", exec.ExecID).
				Msg("failed to deliver execution report")
		}
	}
}
