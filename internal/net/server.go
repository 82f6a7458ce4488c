package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/serzhan-kenesbek/order-book/internal/engine"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultReadTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// ClientSession is one connected TCP session. Writes are serialized
// per session so interleaved reports never corrupt a frame.
type ClientSession struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func (c *ClientSession) write(report Report) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(report.Serialize())
	return err
}

// ownerKey identifies one resting order for maker-side report routing.
type ownerKey struct {
	symbol  string
	orderID uint64
}

// Exchange is the engine surface the gateway drives.
type Exchange interface {
	Submit(symbol string, req engine.OrderRequest) ([]engine.Execution, error)
	Cancel(symbol string, id uint64) error
}

// Server is the order-entry gateway: it owns the TCP listener, the
// client sessions, and the routing of execution reports back to the
// sessions whose orders traded. It implements engine.Reporter.
type Server struct {
	address string
	port    int
	engine  Exchange
	pool    WorkerPool
	cancel  context.CancelFunc

	clientSessionsLock sync.Mutex
	clientSessions     map[string]*ClientSession

	// Resting orders mapped to the session that placed them, so the
	// maker side of a fill can be told about it.
	ownersLock sync.Mutex
	owners     map[ownerKey]string
}

func New(address string, port int, eng Exchange) *Server {
	return &Server{
		address:        address,
		port:           port,
		engine:         eng,
		pool:           NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]*ClientSession),
		owners:         make(map[ownerKey]string),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("gateway shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	s.pool.Setup(t, s.handleConnection)

	log.Info().Str("address", s.address).Int("port", s.port).Msg("gateway running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			log.Info().
				Str("address", conn.RemoteAddr().String()).
				Msg("new client added")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// ReportTrade routes the maker side of an execution to the session
// that placed the resting order. The taker side is answered inline by
// handleNewOrder. Fully filled makers are dropped from the owner map.
func (s *Server) ReportTrade(exec engine.Execution) error {
	key := ownerKey{symbol: exec.Symbol, orderID: exec.MakerID}

	s.ownersLock.Lock()
	addr, ok := s.owners[key]
	if ok && exec.MakerRemaining == 0 {
		delete(s.owners, key)
	}
	s.ownersLock.Unlock()

	if !ok {
		// Order placed outside this gateway; nothing to deliver.
		return nil
	}
	return s.send(addr, executionReport(exec, exec.MakerID, exec.TakerID, exec.MakerRemaining))
}

// handleConnection is a short-lived worker task: read the next frame
// off the connection, act on it, push the connection back for the next
// frame. A dead connection tears down the session and its owner
// entries.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetReadDeadline(time.Now().Add(defaultReadTimeout)); err != nil {
		log.Error().
			Str("address", conn.RemoteAddr().String()).
			Err(err).
			Msg("failed setting deadline for connection")
		s.dropClient(conn)
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Info().
				Err(err).
				Str("address", conn.RemoteAddr().String()).
				Msg("client session ended")
			s.dropClient(conn)
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().
				Err(err).
				Str("address", conn.RemoteAddr().String()).
				Msg("error parsing message")
			s.dropClient(conn)
			return nil
		}

		s.dispatch(conn.RemoteAddr().String(), message)

		// Push the client connection back to handle the next message.
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) dispatch(addr string, message Message) {
	switch m := message.(type) {
	case NewOrderMessage:
		s.handleNewOrder(addr, m)
	case CancelOrderMessage:
		s.handleCancelOrder(addr, m)
	case BaseMessage:
		// Heartbeat: nothing to do, the read reset the deadline.
	}
}

func (s *Server) handleNewOrder(addr string, m NewOrderMessage) {
	symbol, req := m.Request()

	// Claim ownership before submitting: the moment Submit rests the
	// order, a worker on another session can cross it, and ReportTrade
	// must already find the owner. The claim fails when the id is live
	// and owned by someone; the engine rejects that duplicate below
	// and the existing claim is left intact.
	claimed := s.claimOwner(symbol, req.ID, addr)

	execs, err := s.engine.Submit(symbol, req)
	if err != nil {
		if claimed {
			s.removeOwner(symbol, req.ID)
		}
		s.trySend(addr, rejectReport(symbol, req.ID, err))
		return
	}

	remaining := req.Quantity
	for _, exec := range execs {
		remaining -= exec.Quantity
	}
	if remaining == 0 && claimed {
		// Fully filled on entry: nothing rested, nothing to own.
		s.removeOwner(symbol, req.ID)
	}

	s.trySend(addr, ackReport(symbol, req.ID, remaining))

	// Taker-side execution reports, oldest first, with a running
	// remaining quantity. Maker sides have already been routed via
	// ReportTrade during the Submit call.
	takerRemaining := req.Quantity
	for _, exec := range execs {
		takerRemaining -= exec.Quantity
		s.trySend(addr, executionReport(exec, exec.TakerID, exec.MakerID, takerRemaining))
	}
}

func (s *Server) handleCancelOrder(addr string, m CancelOrderMessage) {
	if err := s.engine.Cancel(m.Symbol, m.OrderID); err != nil {
		s.trySend(addr, rejectReport(m.Symbol, m.OrderID, err))
		return
	}

	s.removeOwner(m.Symbol, m.OrderID)
	s.trySend(addr, ackReport(m.Symbol, m.OrderID, 0))
}

// send writes a report to the named session, dropping the session on a
// write failure.
func (s *Server) send(addr string, report Report) error {
	s.clientSessionsLock.Lock()
	client, ok := s.clientSessions[addr]
	s.clientSessionsLock.Unlock()
	if !ok {
		return ErrClientDoesNotExist
	}

	if err := client.write(report); err != nil {
		s.deleteClientSession(addr)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

func (s *Server) trySend(addr string, report Report) {
	if err := s.send(addr, report); err != nil {
		log.Error().Err(err).Str("address", addr).Msg("failed to deliver report")
	}
}

// claimOwner registers addr as the owner of the order unless the id is
// already owned, in which case the existing claim is left untouched.
func (s *Server) claimOwner(symbol string, orderID uint64, addr string) bool {
	key := ownerKey{symbol: symbol, orderID: orderID}

	s.ownersLock.Lock()
	defer s.ownersLock.Unlock()
	if _, ok := s.owners[key]; ok {
		return false
	}
	s.owners[key] = addr
	return true
}

func (s *Server) registerOwner(symbol string, orderID uint64, addr string) {
	s.ownersLock.Lock()
	s.owners[ownerKey{symbol: symbol, orderID: orderID}] = addr
	s.ownersLock.Unlock()
}

func (s *Server) removeOwner(symbol string, orderID uint64) {
	s.ownersLock.Lock()
	delete(s.owners, ownerKey{symbol: symbol, orderID: orderID})
	s.ownersLock.Unlock()
}

func (s *Server) dropClient(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	if err := conn.Close(); err != nil {
		log.Error().Str("address", addr).Err(err).Msg("error closing connection")
	}
	s.deleteClientSession(addr)

	// Orphan the session's resting orders: they stay on the book, but
	// there is no one left to report their fills to.
	s.ownersLock.Lock()
	for key, owner := range s.owners {
		if owner == addr {
			delete(s.owners, key)
		}
	}
	s.ownersLock.Unlock()
}

// addClientSession is an atomic map add.
func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	s.clientSessions[conn.RemoteAddr().String()] = &ClientSession{conn: conn}
}

// deleteClientSession is an atomic map remove.
func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	delete(s.clientSessions, address)
}
