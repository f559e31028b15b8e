package protocol

import (
	"context"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"chatd/internal/push"
	"chatd/internal/registry"
	"chatd/internal/store"
)

// DefaultPageSize is the history page size used when a client asks for a
// non-positive limit.
const DefaultPageSize = 20

// Handler executes the semantic operations shared by every protocol surface.
// Codecs and the RPC service translate to and from it; it never sees wire
// bytes.
type Handler struct {
	store store.Store
	reg   *registry.Registry
	push  *push.Dispatcher
}

func NewHandler(st store.Store, reg *registry.Registry, disp *push.Dispatcher) *Handler {
	return &Handler{store: st, reg: reg, push: disp}
}

// Create registers a new account and claims its session. sink may be nil for
// surfaces whose push channel is separate from the request channel. On
// success the new user is announced to everyone else currently reachable.
func (h *Handler) Create(ctx context.Context, username, password string, sink push.Sink) ([]store.Conversation, Errno) {
	if err := h.store.RegisterAccount(ctx, username, password); err != nil {
		if errors.Is(err, store.ErrUserTaken) {
			return nil, UserTaken
		}
		jww.ERROR.Printf("register %q: %v", username, err)
		return nil, DBError
	}

	if err := h.reg.Register(username, sink); err != nil {
		return nil, UserLoggedOn
	}

	h.push.Broadcast(username, push.NewUser{Username: username})

	convos, err := h.store.Conversations(ctx, username)
	if err != nil {
		jww.ERROR.Printf("conversations for %q: %v", username, err)
		return nil, DBError
	}
	return convos, Success
}

// Login verifies credentials and claims the single active session for
// username. The uniqueness check and the insert run atomically inside the
// registry, so two racing logins cannot both win.
func (h *Handler) Login(ctx context.Context, username, password string, sink push.Sink) ([]store.Conversation, Errno) {
	if h.reg.IsActive(username) {
		return nil, UserLoggedOn
	}

	if err := h.store.VerifyLogin(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return nil, UserDNE
		case errors.Is(err, store.ErrWrongPassword):
			return nil, WrongPass
		default:
			jww.ERROR.Printf("verify login %q: %v", username, err)
			return nil, DBError
		}
	}

	if err := h.reg.Register(username, sink); err != nil {
		// Lost the race against a concurrent login.
		return nil, UserLoggedOn
	}

	convos, err := h.store.Conversations(ctx, username)
	if err != nil {
		jww.ERROR.Printf("conversations for %q: %v", username, err)
		return nil, DBError
	}
	return convos, Success
}

// Read fetches a history page between requester and peer and marks the
// requester-addressed messages in it as read. It returns the page
// oldest-first and the number of messages just marked read.
func (h *Handler) Read(ctx context.Context, requester, peer string, beforeID int64, limit int) ([]store.Message, int, Errno) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	msgs, marked, err := h.store.FetchRecent(ctx, requester, peer, beforeID, limit)
	if err != nil {
		jww.ERROR.Printf("fetch history %q/%q: %v", requester, peer, err)
		return nil, 0, DBError
	}
	return msgs, marked, Success
}

// Send persists one message and pushes it to the recipient if they are
// reachable. A deactivated recipient produces no write and the sentinel
// id -1.
func (h *Handler) Send(ctx context.Context, sender, recipient, text string) (int64, Errno) {
	ok, err := h.store.IsDeliverable(ctx, recipient)
	if err != nil {
		jww.ERROR.Printf("deliverable check %q: %v", recipient, err)
		return 0, DBError
	}
	if !ok {
		return -1, Success
	}

	id, err := h.store.StoreMessage(ctx, sender, recipient, text)
	if err != nil {
		jww.ERROR.Printf("store message %q -> %q: %v", sender, recipient, err)
		return 0, DBError
	}

	h.push.Dispatch(recipient, push.NewMessage{Sender: sender, ID: id, Text: text})
	return id, Success
}

// DeleteMessage removes a message and notifies its recipient, carrying the
// tuple they need to fix unread bookkeeping without a refetch.
func (h *Handler) DeleteMessage(ctx context.Context, id int64) (store.DeleteResult, Errno) {
	res, err := h.store.DeleteMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			return store.DeleteResult{}, IDDNE
		}
		jww.ERROR.Printf("delete message %d: %v", id, err)
		return store.DeleteResult{}, DBError
	}

	h.push.Dispatch(res.Recipient, push.MessageDeleted{
		ID:        res.ID,
		Sender:    res.Sender,
		WasUnread: res.WasUnread,
	})
	return res, Success
}

// DeleteAccount deactivates an account and ends its session. History is
// retained and the username stays reserved.
func (h *Handler) DeleteAccount(ctx context.Context, username string) Errno {
	if err := h.store.DeactivateAccount(ctx, username); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return UserDNE
		}
		jww.ERROR.Printf("deactivate %q: %v", username, err)
		return DBError
	}
	h.reg.Remove(username)
	return Success
}

// AckReceipt records that a pushed message was rendered by its recipient.
// It produces no reply; failures are logged and swallowed.
func (h *Handler) AckReceipt(ctx context.Context, id int64) {
	if err := h.store.MarkRead(ctx, id); err != nil {
		jww.WARN.Printf("mark read %d: %v", id, err)
	}
}
