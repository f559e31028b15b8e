// Package chatpb holds the wire types for the chat RPC surface. They are
// maintained by hand in lockstep with chat.proto; field numbers there are
// the wire contract.
package chatpb

import (
	"github.com/golang/protobuf/proto"
)

// PushEvent.Kind values.
const (
	PushKindNewMessage     int32 = 0
	PushKindNewUser        int32 = 1
	PushKindMessageDeleted int32 = 2
)

type RegisterRequest struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	Password string `protobuf:"bytes,2,opt,name=password,proto3" json:"password,omitempty"`
}

func (m *RegisterRequest) Reset()         { *m = RegisterRequest{} }
func (m *RegisterRequest) String() string { return proto.CompactTextString(m) }
func (*RegisterRequest) ProtoMessage()    {}

func (m *RegisterRequest) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

func (m *RegisterRequest) GetPassword() string {
	if m != nil {
		return m.Password
	}
	return ""
}

type LoginRequest struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	Password string `protobuf:"bytes,2,opt,name=password,proto3" json:"password,omitempty"`
}

func (m *LoginRequest) Reset()         { *m = LoginRequest{} }
func (m *LoginRequest) String() string { return proto.CompactTextString(m) }
func (*LoginRequest) ProtoMessage()    {}

func (m *LoginRequest) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

func (m *LoginRequest) GetPassword() string {
	if m != nil {
		return m.Password
	}
	return ""
}

type UserUnread struct {
	Username    string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	UnreadCount int32  `protobuf:"varint,2,opt,name=unread_count,json=unreadCount,proto3" json:"unread_count,omitempty"`
}

func (m *UserUnread) Reset()         { *m = UserUnread{} }
func (m *UserUnread) String() string { return proto.CompactTextString(m) }
func (*UserUnread) ProtoMessage()    {}

func (m *UserUnread) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

func (m *UserUnread) GetUnreadCount() int32 {
	if m != nil {
		return m.UnreadCount
	}
	return 0
}

type LoginResponse struct {
	Errno       int32         `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
	Username    string        `protobuf:"bytes,2,opt,name=username,proto3" json:"username,omitempty"`
	UserUnreads []*UserUnread `protobuf:"bytes,3,rep,name=user_unreads,json=userUnreads,proto3" json:"user_unreads,omitempty"`
}

func (m *LoginResponse) Reset()         { *m = LoginResponse{} }
func (m *LoginResponse) String() string { return proto.CompactTextString(m) }
func (*LoginResponse) ProtoMessage()    {}

func (m *LoginResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

func (m *LoginResponse) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

func (m *LoginResponse) GetUserUnreads() []*UserUnread {
	if m != nil {
		return m.UserUnreads
	}
	return nil
}

type ChatHistoryRequest struct {
	Username    string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
	OtherUser   string `protobuf:"bytes,2,opt,name=other_user,json=otherUser,proto3" json:"other_user,omitempty"`
	OldestMsgId int64  `protobuf:"varint,3,opt,name=oldest_msg_id,json=oldestMsgId,proto3" json:"oldest_msg_id,omitempty"`
	Limit       int32  `protobuf:"varint,4,opt,name=limit,proto3" json:"limit,omitempty"`
}

func (m *ChatHistoryRequest) Reset()         { *m = ChatHistoryRequest{} }
func (m *ChatHistoryRequest) String() string { return proto.CompactTextString(m) }
func (*ChatHistoryRequest) ProtoMessage()    {}

func (m *ChatHistoryRequest) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

func (m *ChatHistoryRequest) GetOtherUser() string {
	if m != nil {
		return m.OtherUser
	}
	return ""
}

func (m *ChatHistoryRequest) GetOldestMsgId() int64 {
	if m != nil {
		return m.OldestMsgId
	}
	return 0
}

func (m *ChatHistoryRequest) GetLimit() int32 {
	if m != nil {
		return m.Limit
	}
	return 0
}

type ChatMessage struct {
	MsgId  int64  `protobuf:"varint,1,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
	Sender string `protobuf:"bytes,2,opt,name=sender,proto3" json:"sender,omitempty"`
	Text   string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *ChatMessage) Reset()         { *m = ChatMessage{} }
func (m *ChatMessage) String() string { return proto.CompactTextString(m) }
func (*ChatMessage) ProtoMessage()    {}

func (m *ChatMessage) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

func (m *ChatMessage) GetSender() string {
	if m != nil {
		return m.Sender
	}
	return ""
}

func (m *ChatMessage) GetText() string {
	if m != nil {
		return m.Text
	}
	return ""
}

type ChatHistoryResponse struct {
	Errno     int32          `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
	ReadCount int32          `protobuf:"varint,2,opt,name=read_count,json=readCount,proto3" json:"read_count,omitempty"`
	Messages  []*ChatMessage `protobuf:"bytes,3,rep,name=messages,proto3" json:"messages,omitempty"`
}

func (m *ChatHistoryResponse) Reset()         { *m = ChatHistoryResponse{} }
func (m *ChatHistoryResponse) String() string { return proto.CompactTextString(m) }
func (*ChatHistoryResponse) ProtoMessage()    {}

func (m *ChatHistoryResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

func (m *ChatHistoryResponse) GetReadCount() int32 {
	if m != nil {
		return m.ReadCount
	}
	return 0
}

func (m *ChatHistoryResponse) GetMessages() []*ChatMessage {
	if m != nil {
		return m.Messages
	}
	return nil
}

type SendMessageRequest struct {
	Sender    string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	Recipient string `protobuf:"bytes,2,opt,name=recipient,proto3" json:"recipient,omitempty"`
	Text      string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *SendMessageRequest) Reset()         { *m = SendMessageRequest{} }
func (m *SendMessageRequest) String() string { return proto.CompactTextString(m) }
func (*SendMessageRequest) ProtoMessage()    {}

func (m *SendMessageRequest) GetSender() string {
	if m != nil {
		return m.Sender
	}
	return ""
}

func (m *SendMessageRequest) GetRecipient() string {
	if m != nil {
		return m.Recipient
	}
	return ""
}

func (m *SendMessageRequest) GetText() string {
	if m != nil {
		return m.Text
	}
	return ""
}

type SendMessageResponse struct {
	Errno int32 `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
	MsgId int64 `protobuf:"varint,2,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
}

func (m *SendMessageResponse) Reset()         { *m = SendMessageResponse{} }
func (m *SendMessageResponse) String() string { return proto.CompactTextString(m) }
func (*SendMessageResponse) ProtoMessage()    {}

func (m *SendMessageResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

func (m *SendMessageResponse) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

type DeleteMessageRequest struct {
	MsgId int64 `protobuf:"varint,1,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
}

func (m *DeleteMessageRequest) Reset()         { *m = DeleteMessageRequest{} }
func (m *DeleteMessageRequest) String() string { return proto.CompactTextString(m) }
func (*DeleteMessageRequest) ProtoMessage()    {}

func (m *DeleteMessageRequest) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

type DeleteMessageResponse struct {
	Errno     int32  `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
	MsgId     int64  `protobuf:"varint,2,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
	Sender    string `protobuf:"bytes,3,opt,name=sender,proto3" json:"sender,omitempty"`
	WasUnread bool   `protobuf:"varint,4,opt,name=was_unread,json=wasUnread,proto3" json:"was_unread,omitempty"`
}

func (m *DeleteMessageResponse) Reset()         { *m = DeleteMessageResponse{} }
func (m *DeleteMessageResponse) String() string { return proto.CompactTextString(m) }
func (*DeleteMessageResponse) ProtoMessage()    {}

func (m *DeleteMessageResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

func (m *DeleteMessageResponse) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

func (m *DeleteMessageResponse) GetSender() string {
	if m != nil {
		return m.Sender
	}
	return ""
}

func (m *DeleteMessageResponse) GetWasUnread() bool {
	if m != nil {
		return m.WasUnread
	}
	return false
}

type DeleteAccountRequest struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *DeleteAccountRequest) Reset()         { *m = DeleteAccountRequest{} }
func (m *DeleteAccountRequest) String() string { return proto.CompactTextString(m) }
func (*DeleteAccountRequest) ProtoMessage()    {}

func (m *DeleteAccountRequest) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

type DeleteAccountResponse struct {
	Errno int32 `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
}

func (m *DeleteAccountResponse) Reset()         { *m = DeleteAccountResponse{} }
func (m *DeleteAccountResponse) String() string { return proto.CompactTextString(m) }
func (*DeleteAccountResponse) ProtoMessage()    {}

func (m *DeleteAccountResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

type AckRequest struct {
	MsgId int64 `protobuf:"varint,1,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
}

func (m *AckRequest) Reset()         { *m = AckRequest{} }
func (m *AckRequest) String() string { return proto.CompactTextString(m) }
func (*AckRequest) ProtoMessage()    {}

func (m *AckRequest) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

type AckResponse struct {
	Errno int32 `protobuf:"varint,1,opt,name=errno,proto3" json:"errno,omitempty"`
}

func (m *AckResponse) Reset()         { *m = AckResponse{} }
func (m *AckResponse) String() string { return proto.CompactTextString(m) }
func (*AckResponse) ProtoMessage()    {}

func (m *AckResponse) GetErrno() int32 {
	if m != nil {
		return m.Errno
	}
	return 0
}

type SubscribeRequest struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *SubscribeRequest) Reset()         { *m = SubscribeRequest{} }
func (m *SubscribeRequest) String() string { return proto.CompactTextString(m) }
func (*SubscribeRequest) ProtoMessage()    {}

func (m *SubscribeRequest) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

// PushEvent is the tagged union pushed over UpdateStream. Kind selects
// which member is populated.
type PushEvent struct {
	Kind           int32               `protobuf:"varint,1,opt,name=kind,proto3" json:"kind,omitempty"`
	NewMessage     *PushNewMessage     `protobuf:"bytes,2,opt,name=new_message,json=newMessage,proto3" json:"new_message,omitempty"`
	NewUser        *PushNewUser        `protobuf:"bytes,3,opt,name=new_user,json=newUser,proto3" json:"new_user,omitempty"`
	MessageDeleted *PushMessageDeleted `protobuf:"bytes,4,opt,name=message_deleted,json=messageDeleted,proto3" json:"message_deleted,omitempty"`
}

func (m *PushEvent) Reset()         { *m = PushEvent{} }
func (m *PushEvent) String() string { return proto.CompactTextString(m) }
func (*PushEvent) ProtoMessage()    {}

func (m *PushEvent) GetKind() int32 {
	if m != nil {
		return m.Kind
	}
	return 0
}

func (m *PushEvent) GetNewMessage() *PushNewMessage {
	if m != nil {
		return m.NewMessage
	}
	return nil
}

func (m *PushEvent) GetNewUser() *PushNewUser {
	if m != nil {
		return m.NewUser
	}
	return nil
}

func (m *PushEvent) GetMessageDeleted() *PushMessageDeleted {
	if m != nil {
		return m.MessageDeleted
	}
	return nil
}

type PushNewMessage struct {
	Sender string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	MsgId  int64  `protobuf:"varint,2,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
	Text   string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *PushNewMessage) Reset()         { *m = PushNewMessage{} }
func (m *PushNewMessage) String() string { return proto.CompactTextString(m) }
func (*PushNewMessage) ProtoMessage()    {}

func (m *PushNewMessage) GetSender() string {
	if m != nil {
		return m.Sender
	}
	return ""
}

func (m *PushNewMessage) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

func (m *PushNewMessage) GetText() string {
	if m != nil {
		return m.Text
	}
	return ""
}

type PushNewUser struct {
	Username string `protobuf:"bytes,1,opt,name=username,proto3" json:"username,omitempty"`
}

func (m *PushNewUser) Reset()         { *m = PushNewUser{} }
func (m *PushNewUser) String() string { return proto.CompactTextString(m) }
func (*PushNewUser) ProtoMessage()    {}

func (m *PushNewUser) GetUsername() string {
	if m != nil {
		return m.Username
	}
	return ""
}

type PushMessageDeleted struct {
	MsgId     int64  `protobuf:"varint,1,opt,name=msg_id,json=msgId,proto3" json:"msg_id,omitempty"`
	Sender    string `protobuf:"bytes,2,opt,name=sender,proto3" json:"sender,omitempty"`
	WasUnread bool   `protobuf:"varint,3,opt,name=was_unread,json=wasUnread,proto3" json:"was_unread,omitempty"`
}

func (m *PushMessageDeleted) Reset()         { *m = PushMessageDeleted{} }
func (m *PushMessageDeleted) String() string { return proto.CompactTextString(m) }
func (*PushMessageDeleted) ProtoMessage()    {}

func (m *PushMessageDeleted) GetMsgId() int64 {
	if m != nil {
		return m.MsgId
	}
	return 0
}

func (m *PushMessageDeleted) GetSender() string {
	if m != nil {
		return m.Sender
	}
	return ""
}

func (m *PushMessageDeleted) GetWasUnread() bool {
	if m != nil {
		return m.WasUnread
	}
	return false
}
