// Package rpcserver exposes the chat operations over gRPC. Unary RPCs carry
// the request/response half; UpdateStream carries pushes. RPC clients
// authenticate with Login or Register (which claim the session without a
// sink) and become reachable for push once they open their stream.
package rpcserver

import (
	"context"
	"net"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"google.golang.org/grpc"

	"chatd/internal/protocol"
	"chatd/internal/push"
	"chatd/internal/registry"
	"chatd/internal/rpcserver/chatpb"
	"chatd/internal/store"
)

// Service implements chatpb.ChatServiceServer on top of the shared operation
// handler. It holds no per-call state of its own; sessions live in the
// registry.
type Service struct {
	handler *protocol.Handler
	reg     *registry.Registry
}

func NewService(h *protocol.Handler, reg *registry.Registry) *Service {
	return &Service{handler: h, reg: reg}
}

func (s *Service) Register(ctx context.Context, req *chatpb.RegisterRequest) (*chatpb.LoginResponse, error) {
	convos, errno := s.handler.Create(ctx, req.GetUsername(), req.GetPassword(), nil)
	return loginResponse(req.GetUsername(), convos, errno), nil
}

func (s *Service) Login(ctx context.Context, req *chatpb.LoginRequest) (*chatpb.LoginResponse, error) {
	convos, errno := s.handler.Login(ctx, req.GetUsername(), req.GetPassword(), nil)
	return loginResponse(req.GetUsername(), convos, errno), nil
}

func (s *Service) GetChatHistory(ctx context.Context, req *chatpb.ChatHistoryRequest) (*chatpb.ChatHistoryResponse, error) {
	msgs, marked, errno := s.handler.Read(ctx, req.GetUsername(), req.GetOtherUser(), req.GetOldestMsgId(), int(req.GetLimit()))
	resp := &chatpb.ChatHistoryResponse{
		Errno:     int32(errno),
		ReadCount: int32(marked),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, &chatpb.ChatMessage{
			MsgId:  m.ID,
			Sender: m.Sender,
			Text:   m.Body,
		})
	}
	return resp, nil
}

func (s *Service) SendMessage(ctx context.Context, req *chatpb.SendMessageRequest) (*chatpb.SendMessageResponse, error) {
	id, errno := s.handler.Send(ctx, req.GetSender(), req.GetRecipient(), req.GetText())
	return &chatpb.SendMessageResponse{Errno: int32(errno), MsgId: id}, nil
}

func (s *Service) DeleteMessage(ctx context.Context, req *chatpb.DeleteMessageRequest) (*chatpb.DeleteMessageResponse, error) {
	res, errno := s.handler.DeleteMessage(ctx, req.GetMsgId())
	return &chatpb.DeleteMessageResponse{
		Errno:     int32(errno),
		MsgId:     res.ID,
		Sender:    res.Sender,
		WasUnread: res.WasUnread,
	}, nil
}

func (s *Service) DeleteAccount(ctx context.Context, req *chatpb.DeleteAccountRequest) (*chatpb.DeleteAccountResponse, error) {
	errno := s.handler.DeleteAccount(ctx, req.GetUsername())
	return &chatpb.DeleteAccountResponse{Errno: int32(errno)}, nil
}

func (s *Service) AckPushMessage(ctx context.Context, req *chatpb.AckRequest) (*chatpb.AckResponse, error) {
	s.handler.AckReceipt(ctx, req.GetMsgId())
	return &chatpb.AckResponse{Errno: int32(protocol.Success)}, nil
}

// UpdateStream turns an authenticated session into a push subscriber. The
// client sends one SubscribeRequest naming itself; from then on the stream
// only carries server-to-client events. When the stream ends, for any
// reason, the session is released.
func (s *Service) UpdateStream(stream chatpb.ChatService_UpdateStreamServer) error {
	sub, err := stream.Recv()
	if err != nil {
		return err
	}
	username := sub.GetUsername()

	q := push.NewQueue()
	if err := s.reg.Attach(username, q); err != nil {
		jww.WARN.Printf("update stream for %q rejected: %v", username, err)
		return errors.Wrapf(err, "attach stream for %q", username)
	}
	jww.INFO.Printf("update stream open for %q", username)

	defer func() {
		q.Close()
		s.reg.Release(username, q)
		jww.INFO.Printf("update stream closed for %q", username)
	}()

	for {
		ev, err := q.Next(stream.Context())
		if err != nil {
			// Stream context ended; normal teardown.
			return nil
		}
		if err := stream.Send(eventToPB(ev)); err != nil {
			return err
		}
	}
}

func loginResponse(username string, convos []store.Conversation, errno protocol.Errno) *chatpb.LoginResponse {
	resp := &chatpb.LoginResponse{Errno: int32(errno), Username: username}
	for _, c := range convos {
		resp.UserUnreads = append(resp.UserUnreads, &chatpb.UserUnread{
			Username:    c.Peer,
			UnreadCount: int32(c.Unread),
		})
	}
	return resp
}

func eventToPB(ev push.Event) *chatpb.PushEvent {
	switch e := ev.(type) {
	case push.NewMessage:
		return &chatpb.PushEvent{
			Kind: chatpb.PushKindNewMessage,
			NewMessage: &chatpb.PushNewMessage{
				Sender: e.Sender,
				MsgId:  e.ID,
				Text:   e.Text,
			},
		}
	case push.NewUser:
		return &chatpb.PushEvent{
			Kind:    chatpb.PushKindNewUser,
			NewUser: &chatpb.PushNewUser{Username: e.Username},
		}
	case push.MessageDeleted:
		return &chatpb.PushEvent{
			Kind: chatpb.PushKindMessageDeleted,
			MessageDeleted: &chatpb.PushMessageDeleted{
				MsgId:     e.ID,
				Sender:    e.Sender,
				WasUnread: e.WasUnread,
			},
		}
	default:
		// Unknown event kinds are not wire-encodable; drop loudly.
		jww.ERROR.Printf("unencodable push event %T", ev)
		return &chatpb.PushEvent{}
	}
}

// Server owns the gRPC listener. Listen and Serve are split so tests can
// bind ":0" and read the assigned address before serving.
type Server struct {
	grpc *grpc.Server
	ln   net.Listener
}

func NewServer(svc *Service, opts ...grpc.ServerOption) *Server {
	gs := grpc.NewServer(opts...)
	chatpb.RegisterChatServiceServer(gs, svc)
	return &Server{grpc: gs}
}

func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	s.ln = ln
	return nil
}

func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Serve() error {
	jww.INFO.Printf("rpc server listening on %s", s.ln.Addr())
	return s.grpc.Serve(s.ln)
}

// ServeListener runs the gRPC server on a caller-provided listener. Used by
// tests with in-memory listeners.
func (s *Server) ServeListener(ln net.Listener) error {
	return s.grpc.Serve(ln)
}

func (s *Server) Close() {
	s.grpc.GracefulStop()
}
