package push

import (
	jww "github.com/spf13/jwalterweatherman"
)

// Directory resolves usernames to delivery sinks. Satisfied by the active
// client registry; a fake suffices in tests.
type Directory interface {
	// Sink returns the delivery sink for username, if the user is
	// currently reachable for push.
	Sink(username string) (Sink, bool)
	// Reachable lists every username that currently has a sink.
	Reachable() []string
}

// Dispatcher turns store mutations into best-effort deliveries. It never
// blocks the triggering request and never reports failure to it.
type Dispatcher struct {
	dir Directory
}

func NewDispatcher(dir Directory) *Dispatcher {
	return &Dispatcher{dir: dir}
}

// Dispatch delivers ev to username if they are reachable, at most once.
// An unreachable recipient is a silent drop.
func (d *Dispatcher) Dispatch(username string, ev Event) {
	sink, ok := d.dir.Sink(username)
	if !ok {
		jww.TRACE.Printf("push to %q dropped: not reachable", username)
		return
	}
	if !sink.Deliver(ev) {
		jww.WARN.Printf("push to %q failed: sink closed", username)
	}
}

// Broadcast delivers ev to every reachable user except the named one.
func (d *Dispatcher) Broadcast(except string, ev Event) {
	for _, username := range d.dir.Reachable() {
		if username == except {
			continue
		}
		d.Dispatch(username, ev)
	}
}
