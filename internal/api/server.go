// Package api exposes the read-only market-data surface over HTTP:
// instrument list, depth snapshots, and cached top-of-book quotes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

// Server serves market data for the engine it wraps. It never mutates
// the books.
type Server struct {
	engine *engine.Engine
	log    zerolog.Logger
	http   *http.Server
}

func New(addr string, eng *engine.Engine, log zerolog.Logger) *Server {
	s := &Server{
		engine: eng,
		log:    log.With().Str("component", "api").Logger(),
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/v1/instruments", s.handleInstruments)
	r.Route("/v1/book/{symbol}", func(r chi.Router) {
		r.Get("/", s.handleDepth)
		r.Get("/best", s.handleBest)
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down
// gracefully within the timeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.log.Info().Str("address", s.http.Addr).Msg("market data api running")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// --- Handlers ---------------------------------------------------------------

type instrumentsResponse struct {
	Symbols []string `json:"symbols"`
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, instrumentsResponse{Symbols: s.engine.Symbols()})
}

type depthResponse struct {
	Symbol string      `json:"symbol"`
	Bids   []levelJSON `json:"bids"`
	Asks   []levelJSON `json:"asks"`
}

type levelJSON struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	depth, err := s.engine.Depth(symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := depthResponse{
		Symbol: symbol,
		Bids:   make([]levelJSON, len(depth.Bids)),
		Asks:   make([]levelJSON, len(depth.Asks)),
	}
	for i, l := range depth.Bids {
		resp.Bids[i] = levelJSON{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	for i, l := range depth.Asks {
		resp.Asks[i] = levelJSON{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type bestResponse struct {
	Symbol string `json:"symbol"`
	Bid    *int64 `json:"bid"`
	Ask    *int64 `json:"ask"`
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := s.engine.Best(symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := bestResponse{Symbol: symbol}
	if quote.HasBid {
		resp.Bid = &quote.BidPrice
	}
	if quote.HasAsk {
		resp.Ask = &quote.AskPrice
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ----------------------------------------------------------------

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrUnknownSymbol) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	})
}
