// Load generator for the text protocol. Drives pairs of accounts that chat
// with each other over raw TCP, half speaking the custom encoding and half
// speaking JSON, and reports throughput at the end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"chatd/internal/protocol"
)

var (
	addr     = flag.String("addr", "localhost:5050", "chatd text protocol address")
	pairs    = flag.Int("pairs", 50, "number of chatting account pairs")
	msgCount = flag.Int("msgs", 20, "messages each side sends")
)

var sent atomic.Int64

func main() {
	flag.Parse()
	log.Printf("starting load: %d users, %d messages each", *pairs*2, *msgCount)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go func(pairID int) {
			defer wg.Done()
			runPair(pairID)
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := sent.Load()
	log.Printf("done: %d messages in %s (%.0f msg/s)", total, elapsed, float64(total)/elapsed.Seconds())
}

func runPair(pairID int) {
	userA := fmt.Sprintf("u_%d_a", pairID)
	userB := fmt.Sprintf("u_%d_b", pairID)

	// Odd pairs speak JSON so both wire families get exercised.
	var codec protocol.Codec = protocol.CustomCodec{}
	if pairID%2 == 1 {
		codec = protocol.JSONCodec{}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go spam(&wg, codec, userA, userB)
	go spam(&wg, codec, userB, userA)
	wg.Wait()
}

// spam creates the account (falling back to login if it already exists),
// then sends msgs messages to peer, reading frames until each ACK arrives.
func spam(wg *sync.WaitGroup, codec protocol.Codec, user, peer string) {
	defer wg.Done()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Printf("dial failed [%s]: %v", user, err)
		return
	}
	defer conn.Close()
	rd := bufio.NewReader(conn)

	if !authenticate(conn, rd, codec, user) {
		return
	}

	for i := 0; i < *msgCount; i++ {
		frame, err := codec.EncodeRequest(protocol.Request{
			Op:        protocol.OpSend,
			Sender:    user,
			Recipient: peer,
			Text:      fmt.Sprintf("load msg %d from %s", i, user),
		})
		if err != nil {
			log.Printf("encode failed [%s]: %v", user, err)
			return
		}
		if _, err := fmt.Fprintln(conn, frame); err != nil {
			log.Printf("send failed [%s]: %v", user, err)
			return
		}
		if !awaitAck(rd, codec, user) {
			return
		}
		sent.Add(1)
	}
}

func authenticate(conn net.Conn, rd *bufio.Reader, codec protocol.Codec, user string) bool {
	for _, op := range []protocol.Op{protocol.OpCreate, protocol.OpLogin} {
		frame, err := codec.EncodeRequest(protocol.Request{Op: op, Username: user, Password: "password123"})
		if err != nil {
			log.Printf("encode failed [%s]: %v", user, err)
			return false
		}
		if _, err := fmt.Fprintln(conn, frame); err != nil {
			log.Printf("auth send failed [%s]: %v", user, err)
			return false
		}

		msg, ok := awaitReply(rd, codec, user)
		if !ok {
			return false
		}
		if msg.Op == protocol.OpUsers {
			return true
		}
		if msg.Op == protocol.OpError && msg.Err == protocol.UserTaken {
			continue // account exists from a previous run; log in instead
		}
		log.Printf("auth rejected [%s]: %s", user, msg.Err)
		return false
	}
	return false
}

// awaitReply reads frames, skipping pushes, until a reply arrives.
func awaitReply(rd *bufio.Reader, codec protocol.Codec, user string) (*protocol.Response, bool) {
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			log.Printf("read failed [%s]: %v", user, err)
			return nil, false
		}
		msg, err := codec.DecodeServer(strings.TrimSuffix(line, "\n"))
		if err != nil {
			log.Printf("decode failed [%s]: %v", user, err)
			return nil, false
		}
		if msg.Resp != nil {
			return msg.Resp, true
		}
	}
}

func awaitAck(rd *bufio.Reader, codec protocol.Codec, user string) bool {
	resp, ok := awaitReply(rd, codec, user)
	if !ok {
		return false
	}
	if resp.Op != protocol.OpAck {
		log.Printf("expected ack [%s], got %s", user, resp.Op)
		return false
	}
	return true
}
