package tcpserver

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatd/internal/protocol"
	"chatd/internal/push"
	"chatd/internal/registry"
	"chatd/internal/store"
)

func startServer(t *testing.T) *Server {
	t.Helper()

	reg := registry.New()
	handler := protocol.NewHandler(store.NewMemory(), reg, push.NewDispatcher(reg))
	srv := New(protocol.NewDispatcher(handler), reg)
	require.NoError(t, srv.Listen("127.0.0.1:0"))

	go srv.Serve(context.Background())
	t.Cleanup(func() { srv.Close() })
	return srv
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialClient(t *testing.T, srv *Server) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(frame string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(frame + "\n"))
	require.NoError(c.t, err)
}

func (c *testClient) recv() string {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	line, err := c.r.ReadString('\n')
	require.NoError(c.t, err)
	return line[:len(line)-1]
}

func TestEndToEndCustomFamily(t *testing.T) {
	srv := startServer(t)

	alice := dialClient(t, srv)
	bob := dialClient(t, srv)

	alice.send("1.0 CREATE alice pw")
	assert.Equal(t, "1.0 USERS", alice.recv())

	bob.send("1.0 CREATE bob pw")
	assert.Equal(t, "1.0 USERS alice 0", bob.recv())

	// Alice hears about bob the moment he registers.
	assert.Equal(t, "1.0 PUSH_USER bob", alice.recv())

	alice.send("1.0 SEND alice bob hi")
	assert.Equal(t, "1.0 ACK 1", alice.recv())
	assert.Equal(t, "1.0 PUSH_MSG alice 1 hi", bob.recv())

	// Bob fetches history; his one unread reconciles to zero.
	bob.send("1.0 READ bob alice -1 20")
	assert.Equal(t, "1.0 MSGS 1 0 1 1 1 hi", bob.recv())

	alice.send("1.0 DEL_MSG 1")
	assert.Equal(t, "1.0 DEL_MSG 1 alice 0", alice.recv())
	assert.Equal(t, "1.0 DEL_MSG 1 alice 0", bob.recv())
}

func TestEndToEndJSONFamily(t *testing.T) {
	srv := startServer(t)

	carol := dialClient(t, srv)
	carol.send(`2.0 {"opcode":"CREATE","data":["carol","pw"]}`)

	msg, err := (protocol.JSONCodec{}).DecodeServer(carol.recv())
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, protocol.OpUsers, msg.Resp.Op)

	carol.send(`2.0 {"opcode":"SEND","data":["carol","dave","hello dave"]}`)
	msg, err = (protocol.JSONCodec{}).DecodeServer(carol.recv())
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, protocol.OpAck, msg.Resp.Op)
	// Dave does not exist: sentinel id, nothing stored, no push attempted.
	assert.Equal(t, int64(-1), msg.Resp.MsgID)
}

func TestUnsupportedVersionKeepsConnectionOpen(t *testing.T) {
	srv := startServer(t)
	c := dialClient(t, srv)

	c.send("7.5 LOGIN alice pw")
	assert.Equal(t, "1.0 ERROR 5", c.recv())

	// Same connection still works.
	c.send("1.0 CREATE alice pw")
	assert.Equal(t, "1.0 USERS", c.recv())
}

func TestRequestsOnOneConnectionStayOrdered(t *testing.T) {
	srv := startServer(t)

	alice := dialClient(t, srv)
	alice.send("1.0 CREATE alice pw")
	assert.Equal(t, "1.0 USERS", alice.recv())

	bob := dialClient(t, srv)
	bob.send("1.0 CREATE bob pw")
	assert.Equal(t, "1.0 USERS alice 0", bob.recv())
	assert.Equal(t, "1.0 PUSH_USER bob", alice.recv())

	// Pipeline three sends; the pushes go to bob, so alice's replies arrive
	// in request order with nothing interleaved.
	alice.send("1.0 SEND alice bob note one")
	alice.send("1.0 SEND alice bob note two")
	alice.send("1.0 SEND alice bob note three")

	assert.Equal(t, "1.0 ACK 1", alice.recv())
	assert.Equal(t, "1.0 ACK 2", alice.recv())
	assert.Equal(t, "1.0 ACK 3", alice.recv())

	// Bob's pushes arrive in send order too.
	assert.Equal(t, "1.0 PUSH_MSG alice 1 note one", bob.recv())
	assert.Equal(t, "1.0 PUSH_MSG alice 2 note two", bob.recv())
	assert.Equal(t, "1.0 PUSH_MSG alice 3 note three", bob.recv())
}

func TestDisconnectFreesUsername(t *testing.T) {
	srv := startServer(t)

	first := dialClient(t, srv)
	first.send("1.0 CREATE alice pw")
	assert.Equal(t, "1.0 USERS", first.recv())

	// Second login while the first session lives.
	second := dialClient(t, srv)
	second.send("1.0 LOGIN alice pw")
	assert.Equal(t, "1.0 ERROR 8", second.recv())

	// Drop the first connection; the registry entry goes with it.
	first.conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for {
		second.send("1.0 LOGIN alice pw")
		reply := second.recv()
		if reply == "1.0 USERS" {
			break
		}
		require.Equal(t, "1.0 ERROR 8", reply)
		require.True(t, time.Now().Before(deadline), "username was never released")
		time.Sleep(20 * time.Millisecond)
	}
}
