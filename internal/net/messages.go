package net

import (
	"encoding/binary"
	"errors"

	"github.com/serzhan-kenesbek/order-book/internal/book"
	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
	ErrInvalidSide        = errors.New("invalid side")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
)

type Message interface {
	GetType() MessageType
}

// Message format constants. All integers are big endian; symbols are
// fixed four-byte tickers padded with spaces.
const (
	SymbolLen = 4

	BaseMessageHeaderLen  = 2
	NewOrderMessageLen    = BaseMessageHeaderLen + SymbolLen + 1 + 8 + 8 + 8
	CancelOrderMessageLen = BaseMessageHeaderLen + SymbolLen + 8
)

// BaseMessage carries the fields common to every inbound frame.
type BaseMessage struct {
	TypeOf MessageType // 2 bytes
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, ErrMessageTooShort
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case Heartbeat:
		return BaseMessage{TypeOf: Heartbeat}, nil
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

type NewOrderMessage struct {
	BaseMessage
	Symbol   string    // 4 bytes
	Side     book.Side // 1 byte
	OrderID  uint64    // 8 bytes
	Price    int64     // 8 bytes, integer ticks
	Quantity int64     // 8 bytes
}

// Request converts the frame to an engine submission.
func (m NewOrderMessage) Request() (string, engine.OrderRequest) {
	return m.Symbol, engine.OrderRequest{
		ID:       m.OrderID,
		Side:     m.Side,
		Price:    m.Price,
		Quantity: m.Quantity,
	}
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageLen-BaseMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}

	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.Symbol = unpadSymbol(msg[0:4])
	switch msg[4] {
	case 0:
		m.Side = book.Bid
	case 1:
		m.Side = book.Ask
	default:
		return NewOrderMessage{}, ErrInvalidSide
	}
	m.OrderID = binary.BigEndian.Uint64(msg[5:13])
	m.Price = int64(binary.BigEndian.Uint64(msg[13:21]))
	m.Quantity = int64(binary.BigEndian.Uint64(msg[21:29]))

	return m, nil
}

type CancelOrderMessage struct {
	BaseMessage
	Symbol  string // 4 bytes
	OrderID uint64 // 8 bytes
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageLen-BaseMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}

	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}
	m.Symbol = unpadSymbol(msg[0:4])
	m.OrderID = binary.BigEndian.Uint64(msg[4:12])

	return m, nil
}

// EncodeNewOrder builds the wire frame for a NewOrder message. Used by
// clients and tests.
func EncodeNewOrder(m NewOrderMessage) []byte {
	buf := make([]byte, NewOrderMessageLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	copy(buf[2:6], padSymbol(m.Symbol))
	if m.Side == book.Ask {
		buf[6] = 1
	}
	binary.BigEndian.PutUint64(buf[7:15], m.OrderID)
	binary.BigEndian.PutUint64(buf[15:23], uint64(m.Price))
	binary.BigEndian.PutUint64(buf[23:31], uint64(m.Quantity))
	return buf
}

// EncodeCancelOrder builds the wire frame for a CancelOrder message.
func EncodeCancelOrder(m CancelOrderMessage) []byte {
	buf := make([]byte, CancelOrderMessageLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	copy(buf[2:6], padSymbol(m.Symbol))
	binary.BigEndian.PutUint64(buf[6:14], m.OrderID)
	return buf
}

func padSymbol(s string) []byte {
	out := []byte{' ', ' ', ' ', ' '}
	copy(out, s)
	return out
}

func unpadSymbol(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}
