// Package store defines the durable-state contract the protocol layer runs
// against, plus the Postgres and in-memory backends that implement it.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrUserTaken       = errors.New("username already exists")
	ErrUserNotFound    = errors.New("username does not exist")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrMessageNotFound = errors.New("message does not exist")
)

// Message is one persisted chat message.
type Message struct {
	ID        int64
	Sender    string
	Recipient string
	Body      string
	SentAt    time.Time
	Unread    bool
}

// Conversation is one row of a user's conversation summary.
type Conversation struct {
	Peer   string
	Unread int
}

// DeleteResult describes a message that was just removed, so the recipient
// can be notified and can fix its unread count without a refetch.
type DeleteResult struct {
	ID        int64
	Recipient string
	Sender    string
	WasUnread bool
}

// Store is the durable accounts/messages contract. Implementations must keep
// unread counts derivable from the message rows themselves: any aggregation
// happens inside the same transaction as the write that changes it.
type Store interface {
	// RegisterAccount creates a new account. The password is the
	// client-supplied hash; backends apply their own at-rest hashing.
	// Returns ErrUserTaken for a live or deactivated holder of the name.
	RegisterAccount(ctx context.Context, username, password string) error

	// VerifyLogin checks credentials. Deactivated accounts behave as if
	// they do not exist.
	VerifyLogin(ctx context.Context, username, password string) error

	// DeactivateAccount soft-deletes an account. History is retained and
	// the username is never reusable.
	DeactivateAccount(ctx context.Context, username string) error

	// IsDeliverable reports whether recipient can currently receive mail,
	// i.e. exists and is not deactivated.
	IsDeliverable(ctx context.Context, recipient string) (bool, error)

	// StoreMessage persists one unread message and returns its id. Ids are
	// strictly increasing for the lifetime of the backend.
	StoreMessage(ctx context.Context, sender, recipient, body string) (int64, error)

	// FetchRecent returns up to limit messages between userA and userB
	// older than beforeID (beforeID < 0 means the newest page), ordered
	// oldest-first. Fetched messages addressed to userA are flipped to
	// read in the same operation; the flip count is returned.
	FetchRecent(ctx context.Context, userA, userB string, beforeID int64, limit int) ([]Message, int, error)

	// DeleteMessage removes a message and reports who it belonged to.
	DeleteMessage(ctx context.Context, id int64) (DeleteResult, error)

	// MarkRead flips one message to read. Unknown ids are ignored.
	MarkRead(ctx context.Context, id int64) error

	// Conversations returns the summary for username: peers with unread
	// messages first, most recent unread activity first, then every other
	// known account alphabetically with a zero count.
	Conversations(ctx context.Context, username string) ([]Conversation, error)
}
