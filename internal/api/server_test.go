package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serzhan-kenesbek/order-book/internal/book"
	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	eng := engine.New(zerolog.Nop(), "AAPL", "NVDA")
	return New(":0", eng, zerolog.Nop()), eng
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestInstruments(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/v1/instruments")
	require.Equal(t, 200, rec.Code)

	var resp instrumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"AAPL", "NVDA"}, resp.Symbols)
}

func TestDepth(t *testing.T) {
	s, eng := newTestServer(t)

	_, err := eng.Submit("AAPL", engine.OrderRequest{ID: 1, Side: book.Bid, Price: 99, Quantity: 10})
	require.NoError(t, err)
	_, err = eng.Submit("AAPL", engine.OrderRequest{ID: 2, Side: book.Bid, Price: 99, Quantity: 5})
	require.NoError(t, err)
	_, err = eng.Submit("AAPL", engine.OrderRequest{ID: 3, Side: book.Ask, Price: 101, Quantity: 7})
	require.NoError(t, err)

	rec := get(t, s, "/v1/book/AAPL")
	require.Equal(t, 200, rec.Code)

	var resp depthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	require.Len(t, resp.Bids, 1)
	assert.Equal(t, levelJSON{Price: 99, Quantity: 15, Orders: 2}, resp.Bids[0])
	require.Len(t, resp.Asks, 1)
	assert.Equal(t, levelJSON{Price: 101, Quantity: 7, Orders: 1}, resp.Asks[0])
}

func TestBest(t *testing.T) {
	s, eng := newTestServer(t)

	rec := get(t, s, "/v1/book/AAPL/best")
	require.Equal(t, 200, rec.Code)

	var resp bestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Bid)
	assert.Nil(t, resp.Ask)

	_, err := eng.Submit("AAPL", engine.OrderRequest{ID: 1, Side: book.Bid, Price: 99, Quantity: 10})
	require.NoError(t, err)

	rec = get(t, s, "/v1/book/AAPL/best")
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Bid)
	assert.Equal(t, int64(99), *resp.Bid)
	assert.Nil(t, resp.Ask)
}

func TestUnknownSymbol(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/v1/book/MSFT")
	assert.Equal(t, 404, rec.Code)

	rec = get(t, s, "/v1/book/MSFT/best")
	assert.Equal(t, 404, rec.Code)
}
