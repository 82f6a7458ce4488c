package engine

import (
	"github.com/google/uuid"

	"github.com/serzhan-kenesbek/order-book/internal/book"
)

// Execution is one trade dressed for the outside world: the raw book
// trade plus its symbol, an engine-assigned execution id, and the
// arrival stamp of the aggressive order that produced it.
type Execution struct {
	ExecID         string
	Symbol         string
	Price          int64
	Quantity       int64
	MakerID        uint64
	TakerID        uint64
	MakerRemaining int64
	ExecutedAt     int64
}

func NewExecution(symbol string, executedAt int64, trade book.Trade) Execution {
	return Execution{
		ExecID:         uuid.NewString(),
		Symbol:         symbol,
		Price:          trade.Price,
		Quantity:       trade.Quantity,
		MakerID:        trade.MakerID,
		TakerID:        trade.TakerID,
		MakerRemaining: trade.MakerRemaining,
		ExecutedAt:     executedAt,
	}
}

// Reporter receives execution reports as matches happen. Implementors
// deliver to both counterparties; errors are logged by the engine, not
// retried.
type Reporter interface {
	ReportTrade(exec Execution) error
}
