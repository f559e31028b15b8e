// Package tcpserver serves the two text wire families over plain TCP with
// newline framing. Frames on one connection are handled strictly in order;
// connections never block each other.
package tcpserver

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"chatd/internal/protocol"
	"chatd/internal/registry"
)

type Server struct {
	dispatcher *protocol.Dispatcher
	registry   *registry.Registry

	ln net.Listener

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

func New(dispatcher *protocol.Dispatcher, reg *registry.Registry) *Server {
	return &Server{
		dispatcher: dispatcher,
		registry:   reg,
		conns:      make(map[*Conn]struct{}),
	}
}

// Listen binds the address. Serve starts accepting; they are split so
// callers can learn the bound port before serving (":0" in tests).
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	s.ln = ln
	jww.INFO.Printf("text protocols listening on %s", ln.Addr())
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until Close. Each connection gets a read loop
// and a write flusher; ctx is threaded through to every operation.
func (s *Server) Serve(ctx context.Context) error {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return errors.Wrap(err, "accept")
		}

		conn := newConn(nc, s)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			nc.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		jww.DEBUG.Printf("conn %s accepted from %s", conn.id, nc.RemoteAddr())

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			conn.readLoop(ctx)
		}()
		go func() {
			defer s.wg.Done()
			conn.writeLoop()
		}()
	}
}

func (s *Server) dropConn(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// ConnCount reports the number of live text connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops accepting, closes every connection, and waits for the
// connection goroutines to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for _, c := range conns {
		c.close()
	}
	s.wg.Wait()
	return err
}
