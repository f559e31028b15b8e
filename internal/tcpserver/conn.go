package tcpserver

import (
	"bufio"
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	jww "github.com/spf13/jwalterweatherman"

	"chatd/internal/protocol"
	"chatd/internal/push"
)

// maxFrameSize bounds one newline-terminated frame from a peer.
const maxFrameSize = 1 << 20

// Conn is one text-protocol connection: a frame-ordered read loop feeding
// the dispatcher and a flusher draining the outbound queue. The queue is
// unbounded, so a slow peer backlogs only itself and a push enqueue never
// blocks the sender's request.
type Conn struct {
	id  uuid.UUID
	nc  net.Conn
	srv *Server

	mu     sync.Mutex
	outb   []byte
	flush  chan struct{}
	closed bool

	bindMu   sync.Mutex
	username string
	codec    protocol.Codec
}

func newConn(nc net.Conn, srv *Server) *Conn {
	return &Conn{
		id:    uuid.New(),
		nc:    nc,
		srv:   srv,
		flush: make(chan struct{}, 1),
	}
}

// Bind is called by the dispatcher after a successful CREATE or LOGIN.
func (c *Conn) Bind(username string, codec protocol.Codec) {
	c.bindMu.Lock()
	c.username = username
	c.codec = codec
	c.bindMu.Unlock()
	jww.INFO.Printf("conn %s bound to %q (%s)", c.id, username, codec.Version())
}

func (c *Conn) binding() (string, protocol.Codec) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	return c.username, c.codec
}

// Deliver implements push.Sink: encode in the connection's wire family and
// queue without blocking.
func (c *Conn) Deliver(ev push.Event) bool {
	_, codec := c.binding()
	if codec == nil {
		return false
	}
	frame := codec.EncodeEvent(ev)
	if frame == "" {
		return false
	}
	return c.enqueue(frame)
}

// enqueue appends one frame to the outbound queue and wakes the flusher.
func (c *Conn) enqueue(frame string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.outb = append(c.outb, frame...)
	c.outb = append(c.outb, '\n')
	select {
	case c.flush <- struct{}{}:
	default:
	}
	return true
}

// readLoop drains frames in arrival order. Each frame is handled
// synchronously, so one connection's requests never reorder.
func (c *Conn) readLoop(ctx context.Context) {
	defer c.teardown()

	scanner := bufio.NewScanner(c.nc)
	scanner.Buffer(make([]byte, 4096), maxFrameSize)
	for scanner.Scan() {
		reply, ok := c.srv.dispatcher.HandleFrame(ctx, scanner.Text(), c)
		if ok {
			c.enqueue(reply)
		}
	}
	if err := scanner.Err(); err != nil {
		jww.DEBUG.Printf("conn %s read: %v", c.id, err)
	}
}

// writeLoop flushes the outbound queue whenever there is something to send.
// A short write leaves the remainder queued for the next pass.
func (c *Conn) writeLoop() {
	for range c.flush {
		for {
			c.mu.Lock()
			buf := c.outb
			c.outb = nil
			c.mu.Unlock()
			if len(buf) == 0 {
				break
			}
			if _, err := c.nc.Write(buf); err != nil {
				jww.DEBUG.Printf("conn %s write: %v", c.id, err)
				c.nc.Close()
				return
			}
		}
	}
}

// teardown runs when the peer goes away: release the bound username, drop
// the connection, and discard any pending output.
func (c *Conn) teardown() {
	username, _ := c.binding()
	if username != "" {
		c.srv.registry.Release(username, c)
		jww.INFO.Printf("conn %s closed, %q logged off", c.id, username)
	} else {
		jww.DEBUG.Printf("conn %s closed", c.id)
	}
	c.srv.dropConn(c)
	c.close()
}

// close marks the connection dead and stops the flusher. Queued output is
// abandoned.
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.outb = nil
	close(c.flush)
	c.nc.Close()
}
