package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type memAccount struct {
	passwordHash string
	createdAt    time.Time
	deactivated  bool
}

// Memory is an in-process Store backend with the same semantics as Postgres.
// It backs the test suite and the zero-infrastructure dev mode.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*memAccount
	messages map[int64]*Message
	order    []int64 // message ids in insertion order
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*memAccount),
		messages: make(map[int64]*Message),
	}
}

func (m *Memory) RegisterAccount(_ context.Context, username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; ok {
		return ErrUserTaken
	}
	m.accounts[username] = &memAccount{
		passwordHash: string(hashed),
		createdAt:    time.Now(),
	}
	return nil
}

func (m *Memory) VerifyLogin(_ context.Context, username, password string) error {
	m.mu.Lock()
	acct, ok := m.accounts[username]
	m.mu.Unlock()

	if !ok || acct.deactivated {
		return ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}

func (m *Memory) DeactivateAccount(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[username]
	if !ok || acct.deactivated {
		return ErrUserNotFound
	}
	acct.deactivated = true
	return nil
}

func (m *Memory) IsDeliverable(_ context.Context, recipient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[recipient]
	return ok && !acct.deactivated, nil
}

func (m *Memory) StoreMessage(_ context.Context, sender, recipient, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.messages[id] = &Message{
		ID:        id,
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		SentAt:    time.Now(),
		Unread:    true,
	}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Memory) FetchRecent(_ context.Context, userA, userB string, beforeID int64, limit int) ([]Message, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Walk newest to oldest collecting the page, then reverse.
	var page []Message
	for i := len(m.order) - 1; i >= 0 && len(page) < limit; i-- {
		msg, ok := m.messages[m.order[i]]
		if !ok {
			continue // deleted
		}
		if beforeID >= 0 && msg.ID >= beforeID {
			continue
		}
		between := (msg.Sender == userA && msg.Recipient == userB) ||
			(msg.Sender == userB && msg.Recipient == userA)
		if !between {
			continue
		}
		page = append(page, *msg)
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}

	marked := 0
	for i := range page {
		if page[i].Recipient != userA || !page[i].Unread {
			continue
		}
		m.messages[page[i].ID].Unread = false
		page[i].Unread = false
		marked++
	}
	return page, marked, nil
}

func (m *Memory) DeleteMessage(_ context.Context, id int64) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return DeleteResult{}, ErrMessageNotFound
	}
	delete(m.messages, id)
	return DeleteResult{
		ID:        id,
		Recipient: msg.Recipient,
		Sender:    msg.Sender,
		WasUnread: msg.Unread,
	}, nil
}

func (m *Memory) MarkRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg, ok := m.messages[id]; ok {
		msg.Unread = false
	}
	return nil
}

func (m *Memory) Conversations(_ context.Context, username string) ([]Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Unread-bearing peers, keyed by the newest unread message id.
	unread := make(map[string]int)
	lastID := make(map[string]int64)
	for _, id := range m.order {
		msg, ok := m.messages[id]
		if !ok || msg.Recipient != username || !msg.Unread {
			continue
		}
		unread[msg.Sender]++
		if id > lastID[msg.Sender] {
			lastID[msg.Sender] = id
		}
	}

	var convos []Conversation
	for peer, count := range unread {
		convos = append(convos, Conversation{Peer: peer, Unread: count})
	}
	sort.Slice(convos, func(i, j int) bool {
		return lastID[convos[i].Peer] > lastID[convos[j].Peer]
	})

	var others []string
	for name, acct := range m.accounts {
		if name == username || acct.deactivated {
			continue
		}
		if _, ok := unread[name]; ok {
			continue
		}
		others = append(others, name)
	}
	sort.Strings(others)
	for _, name := range others {
		convos = append(convos, Conversation{Peer: name})
	}
	return convos, nil
}
