package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"chatd/internal/push"
)

// ErrUnknownOp marks a well-formed frame whose opcode is not in the table.
// It maps to ERROR(UNKNOWN_COMMAND); any other decode error drops the frame.
var ErrUnknownOp = errors.New("unknown wire command")

// CustomCodec is the space-separated text family, version token "1.0".
//
// History pages are compacted on this wire: consecutive messages from the
// same side collapse into run-length blocks and sender names are elided in
// favor of an origin bit. That is purely presentation; nothing outside this
// file knows about it.
type CustomCodec struct{}

const customVersion = "1.0"

func (CustomCodec) Version() string { return customVersion }

func (CustomCodec) DecodeRequest(payload string) (Request, error) {
	op, rest, _ := strings.Cut(payload, " ")

	switch Op(op) {
	case OpCreate, OpLogin:
		parts := strings.Split(rest, " ")
		if len(parts) != 2 {
			return Request{}, errors.Errorf("%s: want 2 args, got %d", op, len(parts))
		}
		return Request{Op: Op(op), Username: parts[0], Password: parts[1]}, nil

	case OpRead:
		parts := strings.Split(rest, " ")
		if len(parts) != 4 {
			return Request{}, errors.Errorf("READ: want 4 args, got %d", len(parts))
		}
		before, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Request{}, errors.Wrap(err, "READ: bad message id")
		}
		limit, err := strconv.Atoi(parts[3])
		if err != nil {
			return Request{}, errors.Wrap(err, "READ: bad limit")
		}
		return Request{Op: OpRead, Requester: parts[0], Peer: parts[1], BeforeID: before, Limit: limit}, nil

	case OpSend:
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) != 3 {
			return Request{}, errors.Errorf("SEND: want sender, recipient, text")
		}
		return Request{Op: OpSend, Sender: parts[0], Recipient: parts[1], Text: parts[2]}, nil

	case OpDelMsg, OpRecMsg:
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return Request{}, errors.Wrapf(err, "%s: bad message id", op)
		}
		return Request{Op: Op(op), MsgID: id}, nil

	case OpDelAcc:
		username := strings.TrimSpace(rest)
		if username == "" {
			return Request{}, errors.New("DEL_ACC: missing username")
		}
		return Request{Op: OpDelAcc, Username: username}, nil

	default:
		return Request{}, ErrUnknownOp
	}
}

func (c CustomCodec) EncodeResponse(resp Response) string {
	var sb strings.Builder
	sb.WriteString(customVersion)

	switch resp.Op {
	case OpUsers:
		sb.WriteString(" USERS")
		for _, convo := range resp.Conversations {
			fmt.Fprintf(&sb, " %s %d", convo.Peer, convo.Unread)
		}

	case OpMsgs:
		fmt.Fprintf(&sb, " MSGS %d", resp.ReadCount)
		c.encodeHistory(&sb, resp.Messages)

	case OpAck:
		fmt.Fprintf(&sb, " ACK %d", resp.MsgID)

	case OpDelMsg:
		fmt.Fprintf(&sb, " DEL_MSG %d %s %s", resp.MsgID, resp.Sender, boolToken(resp.WasUnread))

	case OpError:
		fmt.Fprintf(&sb, " ERROR %d", int(resp.Err))
	}
	return sb.String()
}

// encodeHistory writes run-length blocks: an origin bit for the first block,
// then for each run of same-side messages its length followed by
// (id, word count, words) per message.
func (CustomCodec) encodeHistory(sb *strings.Builder, msgs []HistoryMessage) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintf(sb, " %s", boolToken(msgs[0].FromRequester))

	for i := 0; i < len(msgs); {
		j := i
		for j < len(msgs) && msgs[j].FromRequester == msgs[i].FromRequester {
			j++
		}
		fmt.Fprintf(sb, " %d", j-i)
		for ; i < j; i++ {
			fmt.Fprintf(sb, " %d %d %s", msgs[i].ID, wordCount(msgs[i].Text), msgs[i].Text)
		}
	}
}

func (CustomCodec) EncodeEvent(ev push.Event) string {
	switch e := ev.(type) {
	case push.NewMessage:
		return fmt.Sprintf("%s PUSH_MSG %s %d %s", customVersion, e.Sender, e.ID, e.Text)
	case push.NewUser:
		return fmt.Sprintf("%s PUSH_USER %s", customVersion, e.Username)
	case push.MessageDeleted:
		return fmt.Sprintf("%s DEL_MSG %d %s %s", customVersion, e.ID, e.Sender, boolToken(e.WasUnread))
	}
	return ""
}

func (CustomCodec) EncodeRequest(req Request) (string, error) {
	switch req.Op {
	case OpCreate, OpLogin:
		return fmt.Sprintf("%s %s %s %s", customVersion, req.Op, req.Username, req.Password), nil
	case OpRead:
		return fmt.Sprintf("%s READ %s %s %d %d", customVersion, req.Requester, req.Peer, req.BeforeID, req.Limit), nil
	case OpSend:
		return fmt.Sprintf("%s SEND %s %s %s", customVersion, req.Sender, req.Recipient, req.Text), nil
	case OpDelMsg, OpRecMsg:
		return fmt.Sprintf("%s %s %d", customVersion, req.Op, req.MsgID), nil
	case OpDelAcc:
		return fmt.Sprintf("%s DEL_ACC %s", customVersion, req.Username), nil
	}
	return "", errors.Errorf("cannot encode op %q", req.Op)
}

func (c CustomCodec) DecodeServer(frame string) (ServerMsg, error) {
	version, payload, _ := strings.Cut(frame, " ")
	if version != customVersion {
		return ServerMsg{}, errors.Errorf("unexpected version token %q", version)
	}
	op, rest, _ := strings.Cut(payload, " ")

	switch Op(op) {
	case OpUsers:
		resp := Response{Op: OpUsers}
		if rest != "" {
			parts := strings.Split(rest, " ")
			if len(parts)%2 != 0 {
				return ServerMsg{}, errors.New("USERS: odd token count")
			}
			for i := 0; i < len(parts); i += 2 {
				unread, err := strconv.Atoi(parts[i+1])
				if err != nil {
					return ServerMsg{}, errors.Wrap(err, "USERS: bad unread count")
				}
				resp.Conversations = append(resp.Conversations, conversation(parts[i], unread))
			}
		}
		return ServerMsg{Resp: &resp}, nil

	case OpMsgs:
		resp, err := c.decodeHistory(rest)
		if err != nil {
			return ServerMsg{}, err
		}
		return ServerMsg{Resp: resp}, nil

	case OpAck:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return ServerMsg{}, errors.Wrap(err, "ACK: bad message id")
		}
		return ServerMsg{Resp: &Response{Op: OpAck, MsgID: id}}, nil

	case OpDelMsg:
		parts := strings.Split(rest, " ")
		if len(parts) != 3 {
			return ServerMsg{}, errors.New("DEL_MSG: want id, sender, unread flag")
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return ServerMsg{}, errors.Wrap(err, "DEL_MSG: bad message id")
		}
		return ServerMsg{Resp: &Response{
			Op: OpDelMsg, MsgID: id, Sender: parts[1], WasUnread: parts[2] == "1",
		}}, nil

	case OpError:
		code, err := strconv.Atoi(rest)
		if err != nil {
			return ServerMsg{}, errors.Wrap(err, "ERROR: bad errno")
		}
		return ServerMsg{Resp: &Response{Op: OpError, Err: Errno(code)}}, nil

	case OpPushMsg:
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) != 3 {
			return ServerMsg{}, errors.New("PUSH_MSG: want sender, id, text")
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return ServerMsg{}, errors.Wrap(err, "PUSH_MSG: bad message id")
		}
		return ServerMsg{Event: push.NewMessage{Sender: parts[0], ID: id, Text: parts[2]}}, nil

	case OpPushUser:
		return ServerMsg{Event: push.NewUser{Username: rest}}, nil

	default:
		return ServerMsg{}, errors.Errorf("unknown server op %q", op)
	}
}

// decodeHistory reverses encodeHistory. Senders are not on this wire, so
// entries come back with the origin bit only.
func (CustomCodec) decodeHistory(rest string) (*Response, error) {
	resp := &Response{Op: OpMsgs}
	if rest == "" {
		return nil, errors.New("MSGS: missing read count")
	}
	tokens := strings.Split(rest, " ")

	readCount, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, errors.Wrap(err, "MSGS: bad read count")
	}
	resp.ReadCount = readCount
	tokens = tokens[1:]
	if len(tokens) == 0 {
		return resp, nil
	}

	fromRequester := tokens[0] == "1"
	tokens = tokens[1:]
	for len(tokens) > 0 {
		runLen, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, errors.Wrap(err, "MSGS: bad run length")
		}
		tokens = tokens[1:]

		for n := 0; n < runLen; n++ {
			if len(tokens) < 2 {
				return nil, errors.New("MSGS: truncated message header")
			}
			id, err := strconv.ParseInt(tokens[0], 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "MSGS: bad message id")
			}
			words, err := strconv.Atoi(tokens[1])
			if err != nil {
				return nil, errors.Wrap(err, "MSGS: bad word count")
			}
			tokens = tokens[2:]
			if words <= 0 || len(tokens) < words {
				return nil, errors.New("MSGS: truncated message text")
			}
			resp.Messages = append(resp.Messages, HistoryMessage{
				ID:            id,
				FromRequester: fromRequester,
				Text:          strings.Join(tokens[:words], " "),
			})
			tokens = tokens[words:]
		}
		fromRequester = !fromRequester
	}
	return resp, nil
}

// wordCount matches the token count the decoder will consume: splits on
// single spaces, so repeated spaces inside a message survive a round trip.
func wordCount(text string) int {
	return len(strings.Split(text, " "))
}

func boolToken(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
