package push

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeDir struct {
	sinks map[string]Sink
}

func (f *fakeDir) Sink(username string) (Sink, bool) {
	s, ok := f.sinks[username]
	return s, ok
}

func (f *fakeDir) Reachable() []string {
	var users []string
	for u := range f.sinks {
		users = append(users, u)
	}
	return users
}

type recordSink struct {
	events []Event
	closed bool
}

func (r *recordSink) Deliver(ev Event) bool {
	if r.closed {
		return false
	}
	r.events = append(r.events, ev)
	return true
}

func TestDispatchToReachableUser(t *testing.T) {
	sink := &recordSink{}
	d := NewDispatcher(&fakeDir{sinks: map[string]Sink{"bob": sink}})

	d.Dispatch("bob", NewMessage{Sender: "alice", ID: 1, Text: "hi"})
	require.Equal(t, []Event{NewMessage{Sender: "alice", ID: 1, Text: "hi"}}, sink.events)
}

func TestDispatchDropsUnreachableUser(t *testing.T) {
	d := NewDispatcher(&fakeDir{sinks: map[string]Sink{}})

	// Must not panic, block, or surface anything.
	d.Dispatch("ghost", NewUser{Username: "alice"})
}

func TestBroadcastSkipsOriginator(t *testing.T) {
	alice := &recordSink{}
	bob := &recordSink{}
	d := NewDispatcher(&fakeDir{sinks: map[string]Sink{"alice": alice, "bob": bob}})

	d.Broadcast("alice", NewUser{Username: "alice"})
	require.Empty(t, alice.events)
	require.Equal(t, []Event{NewUser{Username: "alice"}}, bob.events)
}

func TestQueueDeliverThenNext(t *testing.T) {
	q := NewQueue()
	require.True(t, q.Deliver(NewUser{Username: "alice"}))
	require.True(t, q.Deliver(NewMessage{Sender: "alice", ID: 7, Text: "hey"}))

	ev, err := q.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, NewUser{Username: "alice"}, ev)

	ev, err = q.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, NewMessage{Sender: "alice", ID: 7, Text: "hey"}, ev)
}

func TestQueueNextBlocksUntilDeliver(t *testing.T) {
	q := NewQueue()

	got := make(chan Event, 1)
	go func() {
		ev, err := q.Next(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	// Give the drain goroutine a moment to block.
	time.Sleep(10 * time.Millisecond)
	require.True(t, q.Deliver(MessageDeleted{ID: 3, Sender: "alice", WasUnread: true}))

	select {
	case ev := <-got:
		require.Equal(t, MessageDeleted{ID: 3, Sender: "alice", WasUnread: true}, ev)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake after Deliver")
	}
}

func TestQueueNextHonorsContext(t *testing.T) {
	q := NewQueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueueCloseRejectsDeliver(t *testing.T) {
	q := NewQueue()
	q.Close()
	require.False(t, q.Deliver(NewUser{Username: "alice"}))
}
