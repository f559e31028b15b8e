package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatd/internal/push"
	"chatd/internal/store"
)

func TestCustomRequestFrames(t *testing.T) {
	c := CustomCodec{}

	tests := []struct {
		name  string
		frame string
		want  Request
	}{
		{"create", "CREATE alice s3cr3t", Request{Op: OpCreate, Username: "alice", Password: "s3cr3t"}},
		{"login", "LOGIN bob pw", Request{Op: OpLogin, Username: "bob", Password: "pw"}},
		{"read newest page", "READ alice bob -1 20", Request{Op: OpRead, Requester: "alice", Peer: "bob", BeforeID: -1, Limit: 20}},
		{"send with spaces", "SEND alice bob hi there, how are you?", Request{Op: OpSend, Sender: "alice", Recipient: "bob", Text: "hi there, how are you?"}},
		{"delete message", "DEL_MSG 42", Request{Op: OpDelMsg, MsgID: 42}},
		{"delete account", "DEL_ACC alice", Request{Op: OpDelAcc, Username: "alice"}},
		{"receipt", "REC_MSG 7", Request{Op: OpRecMsg, MsgID: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.DecodeRequest(tt.frame)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// The client half must produce a frame the server half accepts.
			encoded, err := c.EncodeRequest(tt.want)
			require.NoError(t, err)
			version, payload, _ := cutFrame(encoded)
			assert.Equal(t, "1.0", version)
			back, err := c.DecodeRequest(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, back)
		})
	}
}

func TestCustomUnknownCommand(t *testing.T) {
	_, err := CustomCodec{}.DecodeRequest("FROB alice")
	require.ErrorIs(t, err, ErrUnknownOp)
}

func TestCustomMalformedFramesAreErrors(t *testing.T) {
	c := CustomCodec{}
	for _, frame := range []string{
		"CREATE alice",        // missing password
		"READ alice bob x 20", // non-numeric id
		"DEL_MSG notanumber",
		"SEND alice", // missing recipient and text
	} {
		_, err := c.DecodeRequest(frame)
		require.Error(t, err, "frame %q", frame)
		require.NotErrorIs(t, err, ErrUnknownOp)
	}
}

func TestCustomUsersFrame(t *testing.T) {
	c := CustomCodec{}
	frame := c.EncodeResponse(Response{Op: OpUsers, Conversations: []store.Conversation{
		{Peer: "bob", Unread: 3},
		{Peer: "carol", Unread: 0},
	}})
	assert.Equal(t, "1.0 USERS bob 3 carol 0", frame)

	msg, err := c.DecodeServer(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, []store.Conversation{{Peer: "bob", Unread: 3}, {Peer: "carol"}}, msg.Resp.Conversations)
}

func TestCustomHistoryRunLength(t *testing.T) {
	c := CustomCodec{}

	// alice, alice, bob, alice: three runs.
	resp := Response{Op: OpMsgs, ReadCount: 2, Messages: []HistoryMessage{
		{ID: 1, Sender: "alice", FromRequester: true, Text: "hey"},
		{ID: 2, Sender: "alice", FromRequester: true, Text: "you there?"},
		{ID: 3, Sender: "bob", FromRequester: false, Text: "yes, two  spaces"},
		{ID: 4, Sender: "alice", FromRequester: true, Text: "good"},
	}}
	frame := c.EncodeResponse(resp)
	assert.Equal(t, "1.0 MSGS 2 1 2 1 1 hey 2 2 you there? 1 3 4 yes, two  spaces 1 4 1 good", frame)

	msg, err := c.DecodeServer(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, 2, msg.Resp.ReadCount)
	require.Len(t, msg.Resp.Messages, 4)
	for i, want := range resp.Messages {
		got := msg.Resp.Messages[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.FromRequester, got.FromRequester)
		assert.Equal(t, want.Text, got.Text)
		// Sender names are not on this wire.
		assert.Empty(t, got.Sender)
	}
}

func TestCustomEmptyHistory(t *testing.T) {
	c := CustomCodec{}
	frame := c.EncodeResponse(Response{Op: OpMsgs})
	assert.Equal(t, "1.0 MSGS 0", frame)

	msg, err := c.DecodeServer(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Zero(t, msg.Resp.ReadCount)
	assert.Empty(t, msg.Resp.Messages)
}

func TestCustomEventFrames(t *testing.T) {
	c := CustomCodec{}

	frame := c.EncodeEvent(push.NewMessage{Sender: "alice", ID: 9, Text: "knock knock"})
	assert.Equal(t, "1.0 PUSH_MSG alice 9 knock knock", frame)
	msg, err := c.DecodeServer(frame)
	require.NoError(t, err)
	assert.Equal(t, push.NewMessage{Sender: "alice", ID: 9, Text: "knock knock"}, msg.Event)

	frame = c.EncodeEvent(push.NewUser{Username: "dave"})
	assert.Equal(t, "1.0 PUSH_USER dave", frame)
	msg, err = c.DecodeServer(frame)
	require.NoError(t, err)
	assert.Equal(t, push.NewUser{Username: "dave"}, msg.Event)

	// A delete push rides the DEL_MSG frame; clients see it as a response.
	frame = c.EncodeEvent(push.MessageDeleted{ID: 5, Sender: "alice", WasUnread: true})
	assert.Equal(t, "1.0 DEL_MSG 5 alice 1", frame)
	msg, err = c.DecodeServer(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, Response{Op: OpDelMsg, MsgID: 5, Sender: "alice", WasUnread: true}, *msg.Resp)
}

func TestJSONRequestRoundTrips(t *testing.T) {
	c := JSONCodec{}

	tests := []Request{
		{Op: OpCreate, Username: "alice", Password: "s3cr3t"},
		{Op: OpLogin, Username: "bob", Password: "pw"},
		{Op: OpRead, Requester: "alice", Peer: "bob", BeforeID: -1, Limit: 20},
		{Op: OpSend, Sender: "alice", Recipient: "bob", Text: `hi "there" {with json chars}`},
		{Op: OpDelMsg, MsgID: 42},
		{Op: OpDelAcc, Username: "alice"},
		{Op: OpRecMsg, MsgID: 7},
	}
	for _, want := range tests {
		t.Run(string(want.Op), func(t *testing.T) {
			frame, err := c.EncodeRequest(want)
			require.NoError(t, err)
			version, payload, _ := cutFrame(frame)
			require.Equal(t, "2.0", version)

			got, err := c.DecodeRequest(payload)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestJSONUnknownCommand(t *testing.T) {
	_, err := JSONCodec{}.DecodeRequest(`{"opcode":"FROB","data":[]}`)
	require.ErrorIs(t, err, ErrUnknownOp)
}

func TestJSONBadEnvelope(t *testing.T) {
	_, err := JSONCodec{}.DecodeRequest(`not json at all`)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnknownOp)
}

func TestJSONResponseRoundTrips(t *testing.T) {
	c := JSONCodec{}

	tests := []Response{
		{Op: OpUsers, Conversations: []store.Conversation{{Peer: "bob", Unread: 3}, {Peer: "carol"}}},
		{Op: OpMsgs, ReadCount: 1, Messages: []HistoryMessage{
			{ID: 1, Sender: "alice", FromRequester: false, Text: "hello"},
			{ID: 2, Sender: "bob", FromRequester: true, Text: "hi back"},
		}},
		{Op: OpAck, MsgID: 12},
		{Op: OpDelMsg, MsgID: 5, Sender: "alice", WasUnread: true},
		{Op: OpError, Err: UserLoggedOn},
	}
	for _, want := range tests {
		t.Run(string(want.Op), func(t *testing.T) {
			msg, err := c.DecodeServer(c.EncodeResponse(want))
			require.NoError(t, err)
			require.NotNil(t, msg.Resp)
			assert.Equal(t, want, *msg.Resp)
		})
	}
}

func TestJSONEventFrames(t *testing.T) {
	c := JSONCodec{}

	msg, err := c.DecodeServer(c.EncodeEvent(push.NewMessage{Sender: "alice", ID: 9, Text: "hey"}))
	require.NoError(t, err)
	assert.Equal(t, push.NewMessage{Sender: "alice", ID: 9, Text: "hey"}, msg.Event)

	msg, err = c.DecodeServer(c.EncodeEvent(push.NewUser{Username: "dave"}))
	require.NoError(t, err)
	assert.Equal(t, push.NewUser{Username: "dave"}, msg.Event)

	msg, err = c.DecodeServer(c.EncodeEvent(push.MessageDeleted{ID: 5, Sender: "alice", WasUnread: false}))
	require.NoError(t, err)
	require.NotNil(t, msg.Resp)
	assert.Equal(t, Response{Op: OpDelMsg, MsgID: 5, Sender: "alice"}, *msg.Resp)
}

// cutFrame splits a wire frame into version token and payload.
func cutFrame(frame string) (version, payload string, ok bool) {
	for i := 0; i < len(frame); i++ {
		if frame[i] == ' ' {
			return frame[:i], frame[i+1:], true
		}
	}
	return frame, "", false
}
