// Package push carries server-initiated notifications to currently reachable
// clients. Delivery is best effort: durable state is the source of truth and
// a missed push is corrected by the client's next explicit fetch.
package push

// Event is the tagged union of everything the server pushes.
type Event interface {
	pushEvent()
}

// NewMessage notifies a recipient that a message just arrived for them.
type NewMessage struct {
	Sender string
	ID     int64
	Text   string
}

// NewUser notifies everyone else that an account was just created.
type NewUser struct {
	Username string
}

// MessageDeleted notifies a recipient that a message addressed to them was
// deleted, carrying enough to fix unread counts without a round trip.
type MessageDeleted struct {
	ID        int64
	Sender    string
	WasUnread bool
}

func (NewMessage) pushEvent()     {}
func (NewUser) pushEvent()        {}
func (MessageDeleted) pushEvent() {}

// Sink accepts events for one reachable client. Deliver must not block;
// it reports false if the sink can no longer accept events.
type Sink interface {
	Deliver(ev Event) bool
}
