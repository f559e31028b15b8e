package protocol

import (
	"chatd/internal/push"
	"chatd/internal/store"
)

// Op is a wire opcode. Client-to-server ops map one-to-one onto Handler
// operations; the rest only ever travel server-to-client.
type Op string

const (
	OpCreate Op = "CREATE"
	OpLogin  Op = "LOGIN"
	OpRead   Op = "READ"
	OpSend   Op = "SEND"
	OpDelMsg Op = "DEL_MSG"
	OpDelAcc Op = "DEL_ACC"
	OpRecMsg Op = "REC_MSG"

	OpUsers    Op = "USERS"
	OpMsgs     Op = "MSGS"
	OpAck      Op = "ACK"
	OpError    Op = "ERROR"
	OpPushMsg  Op = "PUSH_MSG"
	OpPushUser Op = "PUSH_USER"
)

// Request is one decoded client frame, wire family already stripped away.
// Which fields are meaningful depends on Op.
type Request struct {
	Op Op

	Username string // CREATE, LOGIN, DEL_ACC
	Password string // CREATE, LOGIN

	Requester string // READ
	Peer      string // READ
	BeforeID  int64  // READ; negative means newest page
	Limit     int    // READ

	Sender    string // SEND
	Recipient string // SEND
	Text      string // SEND; always the final wire field, may contain spaces

	MsgID int64 // DEL_MSG, REC_MSG
}

// HistoryMessage is one history entry as it crosses the wire. The custom
// family does not carry sender names, only whether each message came from
// the requesting side, so Sender may be empty after a decode.
type HistoryMessage struct {
	ID            int64
	Sender        string
	FromRequester bool
	Text          string
}

// Response is one server reply, ready for any codec to encode. A zero Op
// means the operation produces no reply frame (REC_MSG).
type Response struct {
	Op  Op
	Err Errno // ERROR

	Conversations []store.Conversation // USERS

	Messages  []HistoryMessage // MSGS
	ReadCount int              // MSGS

	MsgID     int64  // ACK, DEL_MSG
	Sender    string // DEL_MSG
	WasUnread bool   // DEL_MSG
}

// ServerMsg is one decoded server frame: either a reply or a push event.
// This is the client half of the codec, used by tests and client tooling.
type ServerMsg struct {
	Resp  *Response
	Event push.Event
}

// Codec is one wire family. Frames are newline-terminated; all methods work
// on a single frame with the trailing newline already stripped. Encoders
// return the full frame including the version token.
type Codec interface {
	Version() string

	// Server half.
	DecodeRequest(payload string) (Request, error)
	EncodeResponse(resp Response) string
	EncodeEvent(ev push.Event) string

	// Client half.
	EncodeRequest(req Request) (string, error)
	DecodeServer(frame string) (ServerMsg, error)
}

func conversation(peer string, unread int) store.Conversation {
	return store.Conversation{Peer: peer, Unread: unread}
}

// historyFromStore converts store messages to wire entries for requester.
func historyFromStore(requester string, msgs []store.Message) []HistoryMessage {
	out := make([]HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[i] = HistoryMessage{
			ID:            m.ID,
			Sender:        m.Sender,
			FromRequester: m.Sender == requester,
			Text:          m.Body,
		}
	}
	return out
}
