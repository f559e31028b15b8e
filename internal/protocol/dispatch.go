package protocol

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"chatd/internal/push"
)

// ClientConn is the transport side of a text connection as the dispatcher
// sees it: a push sink that can be bound to a username and wire family once
// the client authenticates.
type ClientConn interface {
	push.Sink

	// Bind records the authenticated username and the codec the client
	// spoke, so pushes and disconnect cleanup use the right identity.
	Bind(username string, codec Codec)
}

// Dispatcher routes text frames: version token to codec, opcode to handler.
type Dispatcher struct {
	handler *Handler
	codecs  map[string]Codec
}

func NewDispatcher(h *Handler) *Dispatcher {
	return &Dispatcher{
		handler: h,
		codecs: map[string]Codec{
			customVersion: CustomCodec{},
			jsonVersion:   JSONCodec{},
		},
	}
}

// HandleFrame processes one newline-stripped frame and returns the reply
// frame, if the operation produces one. Frames too malformed to answer are
// dropped; the connection stays open either way.
func (d *Dispatcher) HandleFrame(ctx context.Context, frame string, conn ClientConn) (string, bool) {
	frame = strings.TrimSuffix(frame, "\r")
	version, payload, _ := strings.Cut(frame, " ")

	codec, ok := d.codecs[version]
	if !ok {
		// No wire family is established before this point, so the
		// refusal goes out in the canonical custom encoding.
		return CustomCodec{}.EncodeResponse(Response{Op: OpError, Err: UnsupportedVersion}), true
	}

	req, err := codec.DecodeRequest(payload)
	if errors.Is(err, ErrUnknownOp) {
		return codec.EncodeResponse(Response{Op: OpError, Err: UnknownCommand}), true
	}
	if err != nil {
		jww.DEBUG.Printf("dropping malformed %s frame: %v", version, err)
		return "", false
	}

	resp, reply := d.execute(ctx, req, codec, conn)
	if !reply {
		return "", false
	}
	return codec.EncodeResponse(resp), true
}

func (d *Dispatcher) execute(ctx context.Context, req Request, codec Codec, conn ClientConn) (Response, bool) {
	switch req.Op {
	case OpCreate:
		convos, errno := d.handler.Create(ctx, req.Username, req.Password, conn)
		if errno != Success {
			return Response{Op: OpError, Err: errno}, true
		}
		conn.Bind(req.Username, codec)
		return Response{Op: OpUsers, Conversations: convos}, true

	case OpLogin:
		convos, errno := d.handler.Login(ctx, req.Username, req.Password, conn)
		if errno != Success {
			return Response{Op: OpError, Err: errno}, true
		}
		conn.Bind(req.Username, codec)
		return Response{Op: OpUsers, Conversations: convos}, true

	case OpRead:
		msgs, marked, errno := d.handler.Read(ctx, req.Requester, req.Peer, req.BeforeID, req.Limit)
		if errno != Success {
			return Response{Op: OpError, Err: errno}, true
		}
		return Response{
			Op:        OpMsgs,
			ReadCount: marked,
			Messages:  historyFromStore(req.Requester, msgs),
		}, true

	case OpSend:
		id, errno := d.handler.Send(ctx, req.Sender, req.Recipient, req.Text)
		if errno != Success {
			return Response{Op: OpError, Err: errno}, true
		}
		return Response{Op: OpAck, MsgID: id}, true

	case OpDelMsg:
		res, errno := d.handler.DeleteMessage(ctx, req.MsgID)
		if errno != Success {
			return Response{Op: OpError, Err: errno}, true
		}
		return Response{Op: OpDelMsg, MsgID: res.ID, Sender: res.Sender, WasUnread: res.WasUnread}, true

	case OpDelAcc:
		errno := d.handler.DeleteAccount(ctx, req.Username)
		// No dedicated confirmation frame exists; a status frame with
		// errno 0 reports success.
		return Response{Op: OpError, Err: errno}, true

	case OpRecMsg:
		d.handler.AckReceipt(ctx, req.MsgID)
		return Response{}, false
	}

	return Response{Op: OpError, Err: UnknownCommand}, true
}
