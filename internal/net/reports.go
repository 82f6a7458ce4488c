package net

import (
	"encoding/binary"

	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

type ReportType uint8

const (
	AckReport ReportType = iota
	RejectReport
	ExecutionReport
)

// Report is the single outbound frame shape: acks and rejects for the
// submitting session, execution reports for both counterparties of a
// trade. The variable-length tails (exec id, error text) are
// length-prefixed in the fixed header; the prefixes are derived from
// the strings at serialization time.
type Report struct {
	TypeOf         ReportType // 1 byte
	Symbol         string     // 4 bytes
	OrderID        uint64     // 8 bytes
	CounterpartyID uint64     // 8 bytes
	Price          int64      // 8 bytes
	Quantity       int64      // 8 bytes
	Remaining      int64      // 8 bytes
	ExecutedAt     int64      // 8 bytes
	ExecID         string     // 1 length byte + n bytes
	Err            string     // 2 length bytes + n bytes
}

const reportFixedHeaderLen = 1 + SymbolLen + 8 + 8 + 8 + 8 + 8 + 8 + 1 + 2

// Serialize converts the report to its wire form.
func (r Report) Serialize() []byte {
	buf := make([]byte, reportFixedHeaderLen+len(r.ExecID)+len(r.Err))
	buf[0] = byte(r.TypeOf)
	copy(buf[1:5], padSymbol(r.Symbol))
	binary.BigEndian.PutUint64(buf[5:13], r.OrderID)
	binary.BigEndian.PutUint64(buf[13:21], r.CounterpartyID)
	binary.BigEndian.PutUint64(buf[21:29], uint64(r.Price))
	binary.BigEndian.PutUint64(buf[29:37], uint64(r.Quantity))
	binary.BigEndian.PutUint64(buf[37:45], uint64(r.Remaining))
	binary.BigEndian.PutUint64(buf[45:53], uint64(r.ExecutedAt))
	buf[53] = byte(len(r.ExecID))
	binary.BigEndian.PutUint16(buf[54:56], uint16(len(r.Err)))

	offset := reportFixedHeaderLen
	copy(buf[offset:], r.ExecID)
	offset += len(r.ExecID)
	copy(buf[offset:], r.Err)
	return buf
}

// executionReport builds the report addressed to one party of a trade.
func executionReport(exec engine.Execution, orderID, counterpartyID uint64, remaining int64) Report {
	return Report{
		TypeOf:         ExecutionReport,
		Symbol:         exec.Symbol,
		OrderID:        orderID,
		CounterpartyID: counterpartyID,
		Price:          exec.Price,
		Quantity:       exec.Quantity,
		Remaining:      remaining,
		ExecutedAt:     exec.ExecutedAt,
		ExecID:         exec.ExecID,
	}
}

func ackReport(symbol string, orderID uint64, remaining int64) Report {
	return Report{
		TypeOf:    AckReport,
		Symbol:    symbol,
		OrderID:   orderID,
		Remaining: remaining,
	}
}

func rejectReport(symbol string, orderID uint64, err error) Report {
	return Report{
		TypeOf:  RejectReport,
		Symbol:  symbol,
		OrderID: orderID,
		Err:     err.Error(),
	}
}
