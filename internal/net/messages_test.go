package net

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serzhan-kenesbek/order-book/internal/book"
	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

func TestParseMessage_NewOrderRoundTrip(t *testing.T) {
	frame := EncodeNewOrder(NewOrderMessage{
		Symbol:   "AAPL",
		Side:     book.Ask,
		OrderID:  42,
		Price:    10150,
		Quantity: 300,
	})
	assert.Len(t, frame, NewOrderMessageLen)

	message, err := parseMessage(frame)
	require.NoError(t, err)

	m, ok := message.(NewOrderMessage)
	require.True(t, ok)
	assert.Equal(t, NewOrder, m.GetType())
	assert.Equal(t, "AAPL", m.Symbol)
	assert.Equal(t, book.Ask, m.Side)
	assert.Equal(t, uint64(42), m.OrderID)
	assert.Equal(t, int64(10150), m.Price)
	assert.Equal(t, int64(300), m.Quantity)
}

func TestParseMessage_ShortSymbolPadding(t *testing.T) {
	frame := EncodeNewOrder(NewOrderMessage{
		Symbol:   "BT",
		Side:     book.Bid,
		OrderID:  1,
		Price:    5,
		Quantity: 1,
	})

	message, err := parseMessage(frame)
	require.NoError(t, err)

	m := message.(NewOrderMessage)
	assert.Equal(t, "BT", m.Symbol)
	assert.Equal(t, book.Bid, m.Side)
}

func TestParseMessage_CancelOrderRoundTrip(t *testing.T) {
	frame := EncodeCancelOrder(CancelOrderMessage{
		Symbol:  "NVDA",
		OrderID: 7,
	})
	assert.Len(t, frame, CancelOrderMessageLen)

	message, err := parseMessage(frame)
	require.NoError(t, err)

	m, ok := message.(CancelOrderMessage)
	require.True(t, ok)
	assert.Equal(t, CancelOrder, m.GetType())
	assert.Equal(t, "NVDA", m.Symbol)
	assert.Equal(t, uint64(7), m.OrderID)
}

func TestParseMessage_Errors(t *testing.T) {
	t.Run("empty frame", func(t *testing.T) {
		_, err := parseMessage(nil)
		assert.ErrorIs(t, err, ErrMessageTooShort)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := parseMessage([]byte{0xFF, 0xFF})
		assert.ErrorIs(t, err, ErrInvalidMessageType)
	})

	t.Run("truncated new order", func(t *testing.T) {
		frame := EncodeNewOrder(NewOrderMessage{Symbol: "AAPL", OrderID: 1, Price: 1, Quantity: 1})
		_, err := parseMessage(frame[:10])
		assert.ErrorIs(t, err, ErrMessageTooShort)
	})

	t.Run("truncated cancel", func(t *testing.T) {
		frame := EncodeCancelOrder(CancelOrderMessage{Symbol: "AAPL", OrderID: 1})
		_, err := parseMessage(frame[:8])
		assert.ErrorIs(t, err, ErrMessageTooShort)
	})

	t.Run("invalid side", func(t *testing.T) {
		frame := EncodeNewOrder(NewOrderMessage{Symbol: "AAPL", OrderID: 1, Price: 1, Quantity: 1})
		frame[6] = 9
		_, err := parseMessage(frame)
		assert.ErrorIs(t, err, ErrInvalidSide)
	})
}

func TestParseMessage_Heartbeat(t *testing.T) {
	message, err := parseMessage([]byte{0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, Heartbeat, message.GetType())
}

func TestReport_Serialize(t *testing.T) {
	r := rejectReport("AAPL", 5, ErrInvalidMessageType)
	frame := r.Serialize()

	assert.Len(t, frame, reportFixedHeaderLen+len(ErrInvalidMessageType.Error()))
	assert.Equal(t, byte(RejectReport), frame[0])
	assert.Equal(t, "AAPL", unpadSymbol(frame[1:5]))
	// Length bytes come off the payload strings themselves.
	assert.Equal(t, byte(0), frame[53])
	assert.Equal(t, uint16(len(ErrInvalidMessageType.Error())), binary.BigEndian.Uint16(frame[54:56]))
	assert.Equal(t, ErrInvalidMessageType.Error(), string(frame[reportFixedHeaderLen:]))

	ack := ackReport("BT", 9, 25)
	frame = ack.Serialize()
	assert.Len(t, frame, reportFixedHeaderLen)
	assert.Equal(t, byte(AckReport), frame[0])
	assert.Equal(t, "BT", unpadSymbol(frame[1:5]))
	assert.Equal(t, byte(0), frame[53])
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(frame[54:56]))

	fill := executionReport(engine.Execution{
		ExecID:   "exec-1",
		Symbol:   "AAPL",
		Price:    100,
		Quantity: 10,
	}, 1, 2, 0)
	frame = fill.Serialize()
	assert.Len(t, frame, reportFixedHeaderLen+len("exec-1"))
	assert.Equal(t, byte(len("exec-1")), frame[53])
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(frame[54:56]))
	assert.Equal(t, "exec-1", string(frame[reportFixedHeaderLen:]))
}
