package protocol

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"chatd/internal/push"
)

// JSONCodec is the structured text family, version token "2.0". Each frame
// is the version token followed by one envelope object.
type JSONCodec struct{}

const jsonVersion = "2.0"

type jsonEnvelope struct {
	Opcode string            `json:"opcode"`
	Data   []json.RawMessage `json:"data"`
}

type jsonConversation struct {
	Username string `json:"username"`
	Unread   int    `json:"unread"`
}

type jsonMessage struct {
	ID            int64  `json:"id"`
	Sender        string `json:"sender,omitempty"`
	FromRequester bool   `json:"from_requester"`
	Text          string `json:"text"`
}

func (JSONCodec) Version() string { return jsonVersion }

func (JSONCodec) DecodeRequest(payload string) (Request, error) {
	var env jsonEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Request{}, errors.Wrap(err, "bad envelope")
	}

	switch Op(env.Opcode) {
	case OpCreate, OpLogin:
		args, err := jsonStrings(env.Data, 2)
		if err != nil {
			return Request{}, errors.Wrap(err, env.Opcode)
		}
		return Request{Op: Op(env.Opcode), Username: args[0], Password: args[1]}, nil

	case OpRead:
		if len(env.Data) != 4 {
			return Request{}, errors.Errorf("READ: want 4 args, got %d", len(env.Data))
		}
		req := Request{Op: OpRead}
		if err := unmarshalAll(env.Data, &req.Requester, &req.Peer, &req.BeforeID, &req.Limit); err != nil {
			return Request{}, errors.Wrap(err, "READ")
		}
		return req, nil

	case OpSend:
		args, err := jsonStrings(env.Data, 3)
		if err != nil {
			return Request{}, errors.Wrap(err, "SEND")
		}
		return Request{Op: OpSend, Sender: args[0], Recipient: args[1], Text: args[2]}, nil

	case OpDelMsg, OpRecMsg:
		req := Request{Op: Op(env.Opcode)}
		if len(env.Data) != 1 {
			return Request{}, errors.Errorf("%s: want 1 arg, got %d", env.Opcode, len(env.Data))
		}
		if err := unmarshalAll(env.Data, &req.MsgID); err != nil {
			return Request{}, errors.Wrap(err, env.Opcode)
		}
		return req, nil

	case OpDelAcc:
		args, err := jsonStrings(env.Data, 1)
		if err != nil {
			return Request{}, errors.Wrap(err, "DEL_ACC")
		}
		return Request{Op: OpDelAcc, Username: args[0]}, nil

	default:
		return Request{}, ErrUnknownOp
	}
}

func (JSONCodec) EncodeResponse(resp Response) string {
	var data []interface{}

	switch resp.Op {
	case OpUsers:
		for _, convo := range resp.Conversations {
			data = append(data, jsonConversation{Username: convo.Peer, Unread: convo.Unread})
		}

	case OpMsgs:
		msgs := make([]jsonMessage, len(resp.Messages))
		for i, m := range resp.Messages {
			msgs[i] = jsonMessage{ID: m.ID, Sender: m.Sender, FromRequester: m.FromRequester, Text: m.Text}
		}
		data = []interface{}{resp.ReadCount, msgs}

	case OpAck:
		data = []interface{}{resp.MsgID}

	case OpDelMsg:
		data = []interface{}{resp.MsgID, resp.Sender, resp.WasUnread}

	case OpError:
		data = []interface{}{int(resp.Err)}
	}
	return jsonFrame(resp.Op, data)
}

func (JSONCodec) EncodeEvent(ev push.Event) string {
	switch e := ev.(type) {
	case push.NewMessage:
		return jsonFrame(OpPushMsg, []interface{}{e.Sender, e.ID, e.Text})
	case push.NewUser:
		return jsonFrame(OpPushUser, []interface{}{e.Username})
	case push.MessageDeleted:
		return jsonFrame(OpDelMsg, []interface{}{e.ID, e.Sender, e.WasUnread})
	}
	return ""
}

func (JSONCodec) EncodeRequest(req Request) (string, error) {
	switch req.Op {
	case OpCreate, OpLogin:
		return jsonFrame(req.Op, []interface{}{req.Username, req.Password}), nil
	case OpRead:
		return jsonFrame(OpRead, []interface{}{req.Requester, req.Peer, req.BeforeID, req.Limit}), nil
	case OpSend:
		return jsonFrame(OpSend, []interface{}{req.Sender, req.Recipient, req.Text}), nil
	case OpDelMsg, OpRecMsg:
		return jsonFrame(req.Op, []interface{}{req.MsgID}), nil
	case OpDelAcc:
		return jsonFrame(OpDelAcc, []interface{}{req.Username}), nil
	}
	return "", errors.Errorf("cannot encode op %q", req.Op)
}

func (JSONCodec) DecodeServer(frame string) (ServerMsg, error) {
	version, payload, _ := strings.Cut(frame, " ")
	if version != jsonVersion {
		return ServerMsg{}, errors.Errorf("unexpected version token %q", version)
	}
	var env jsonEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return ServerMsg{}, errors.Wrap(err, "bad envelope")
	}

	switch Op(env.Opcode) {
	case OpUsers:
		resp := Response{Op: OpUsers}
		for _, raw := range env.Data {
			var convo jsonConversation
			if err := json.Unmarshal(raw, &convo); err != nil {
				return ServerMsg{}, errors.Wrap(err, "USERS")
			}
			resp.Conversations = append(resp.Conversations, conversation(convo.Username, convo.Unread))
		}
		return ServerMsg{Resp: &resp}, nil

	case OpMsgs:
		if len(env.Data) != 2 {
			return ServerMsg{}, errors.Errorf("MSGS: want 2 elements, got %d", len(env.Data))
		}
		resp := Response{Op: OpMsgs}
		var msgs []jsonMessage
		if err := unmarshalAll(env.Data, &resp.ReadCount, &msgs); err != nil {
			return ServerMsg{}, errors.Wrap(err, "MSGS")
		}
		for _, m := range msgs {
			resp.Messages = append(resp.Messages, HistoryMessage{
				ID: m.ID, Sender: m.Sender, FromRequester: m.FromRequester, Text: m.Text,
			})
		}
		return ServerMsg{Resp: &resp}, nil

	case OpAck:
		resp := Response{Op: OpAck}
		if err := unmarshalAll(env.Data, &resp.MsgID); err != nil {
			return ServerMsg{}, errors.Wrap(err, "ACK")
		}
		return ServerMsg{Resp: &resp}, nil

	case OpDelMsg:
		resp := Response{Op: OpDelMsg}
		if err := unmarshalAll(env.Data, &resp.MsgID, &resp.Sender, &resp.WasUnread); err != nil {
			return ServerMsg{}, errors.Wrap(err, "DEL_MSG")
		}
		return ServerMsg{Resp: &resp}, nil

	case OpError:
		var code int
		if err := unmarshalAll(env.Data, &code); err != nil {
			return ServerMsg{}, errors.Wrap(err, "ERROR")
		}
		return ServerMsg{Resp: &Response{Op: OpError, Err: Errno(code)}}, nil

	case OpPushMsg:
		var ev push.NewMessage
		if err := unmarshalAll(env.Data, &ev.Sender, &ev.ID, &ev.Text); err != nil {
			return ServerMsg{}, errors.Wrap(err, "PUSH_MSG")
		}
		return ServerMsg{Event: ev}, nil

	case OpPushUser:
		var username string
		if err := unmarshalAll(env.Data, &username); err != nil {
			return ServerMsg{}, errors.Wrap(err, "PUSH_USER")
		}
		return ServerMsg{Event: push.NewUser{Username: username}}, nil

	default:
		return ServerMsg{}, errors.Errorf("unknown server op %q", env.Opcode)
	}
}

func jsonFrame(op Op, data []interface{}) string {
	if data == nil {
		data = []interface{}{}
	}
	raw, err := json.Marshal(struct {
		Opcode string        `json:"opcode"`
		Data   []interface{} `json:"data"`
	}{Opcode: string(op), Data: data})
	if err != nil {
		// Only reachable with an unmarshalable value, which none of the
		// envelope shapes contain.
		return jsonVersion + ` {"opcode":"ERROR","data":[4]}`
	}
	return jsonVersion + " " + string(raw)
}

func jsonStrings(data []json.RawMessage, want int) ([]string, error) {
	if len(data) != want {
		return nil, errors.Errorf("want %d args, got %d", want, len(data))
	}
	out := make([]string, want)
	for i, raw := range data {
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "arg %d", i)
		}
	}
	return out, nil
}

// unmarshalAll decodes each element of data into the matching target.
func unmarshalAll(data []json.RawMessage, targets ...interface{}) error {
	if len(data) != len(targets) {
		return errors.Errorf("want %d elements, got %d", len(targets), len(data))
	}
	for i, raw := range data {
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}
