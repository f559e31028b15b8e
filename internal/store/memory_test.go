package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.RegisterAccount(ctx, "alice", "hash1"))
	require.NoError(t, s.VerifyLogin(ctx, "alice", "hash1"))

	require.ErrorIs(t, s.VerifyLogin(ctx, "alice", "wrong"), ErrWrongPassword)
	require.ErrorIs(t, s.VerifyLogin(ctx, "nobody", "hash1"), ErrUserNotFound)
}

func TestRegisterDuplicate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.RegisterAccount(ctx, "alice", "hash1"))
	require.ErrorIs(t, s.RegisterAccount(ctx, "alice", "hash2"), ErrUserTaken)
}

func TestDeactivatedAccount(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.RegisterAccount(ctx, "alice", "hash1"))
	require.NoError(t, s.DeactivateAccount(ctx, "alice"))

	// Login behaves as if the account never existed, but the name stays taken.
	require.ErrorIs(t, s.VerifyLogin(ctx, "alice", "hash1"), ErrUserNotFound)
	require.ErrorIs(t, s.RegisterAccount(ctx, "alice", "hash1"), ErrUserTaken)
	require.ErrorIs(t, s.DeactivateAccount(ctx, "alice"), ErrUserNotFound)

	ok, err := s.IsDeliverable(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMessageIDsStrictlyIncrease(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var last int64
	for i := 0; i < 10; i++ {
		id, err := s.StoreMessage(ctx, "alice", "bob", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}
}

func TestFetchRecentPagingAndReadMarking(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := s.StoreMessage(ctx, "alice", "bob", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	// Newest page of 5, oldest-first, all flipped to read for bob.
	page, marked, err := s.FetchRecent(ctx, "bob", "alice", -1, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	require.Equal(t, 5, marked)
	require.Equal(t, "msg 2", page[0].Body)
	require.Equal(t, "msg 6", page[4].Body)
	for _, m := range page {
		require.False(t, m.Unread)
	}

	// Older page before the first returned id.
	older, marked, err := s.FetchRecent(ctx, "bob", "alice", page[0].ID, 5)
	require.NoError(t, err)
	require.Len(t, older, 2)
	require.Equal(t, 2, marked)
	require.Equal(t, "msg 0", older[0].Body)

	// Everything is read now.
	convos, err := s.Conversations(ctx, "bob")
	require.NoError(t, err)
	for _, c := range convos {
		require.Zero(t, c.Unread)
	}
}

func TestFetchRecentDoesNotMarkSendersSide(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.StoreMessage(ctx, "alice", "bob", "hi bob")
	require.NoError(t, err)

	// Alice fetching her own conversation must not mark bob's copy read.
	_, marked, err := s.FetchRecent(ctx, "alice", "bob", -1, 10)
	require.NoError(t, err)
	require.Zero(t, marked)

	convos, err := s.Conversations(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, []Conversation{{Peer: "alice", Unread: 1}}, convos)
}

func TestDeleteMessage(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	id, err := s.StoreMessage(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	res, err := s.DeleteMessage(ctx, id)
	require.NoError(t, err)
	require.Equal(t, DeleteResult{ID: id, Recipient: "bob", Sender: "alice", WasUnread: true}, res)

	_, err = s.DeleteMessage(ctx, id)
	require.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMarkRead(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.RegisterAccount(ctx, "alice", "pw"))
	require.NoError(t, s.RegisterAccount(ctx, "bob", "pw"))

	id, err := s.StoreMessage(ctx, "alice", "bob", "hello")
	require.NoError(t, err)
	require.NoError(t, s.MarkRead(ctx, id))
	require.NoError(t, s.MarkRead(ctx, 999)) // unknown ids are ignored

	convos, err := s.Conversations(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, []Conversation{{Peer: "alice"}}, convos)
}

func TestConversationOrdering(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, name := range []string{"dave", "alice", "carol", "bob", "zed"} {
		require.NoError(t, s.RegisterAccount(ctx, name, "pw"))
	}

	// carol then alice message dave: alice has the most recent unread.
	_, err := s.StoreMessage(ctx, "carol", "dave", "one")
	require.NoError(t, err)
	_, err = s.StoreMessage(ctx, "carol", "dave", "two")
	require.NoError(t, err)
	_, err = s.StoreMessage(ctx, "alice", "dave", "three")
	require.NoError(t, err)

	convos, err := s.Conversations(ctx, "dave")
	require.NoError(t, err)
	require.Equal(t, []Conversation{
		{Peer: "alice", Unread: 1},
		{Peer: "carol", Unread: 2},
		{Peer: "bob"},
		{Peer: "zed"},
	}, convos)
}
