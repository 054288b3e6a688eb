package entity

import "time"

// MaxContentLength is the storage bound on message content, in UTF-16 code units.
const MaxContentLength = 2000

// Message is a persisted direct message. Values are never mutated after Save.
type Message struct {
	Id         int64     `bson:"_id" json:"id"`
	SenderId   int64     `bson:"senderId" json:"senderId"`
	ReceiverId int64     `bson:"receiverId" json:"receiverId"`
	Content    string    `bson:"content" json:"content"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

// Counterpart returns the participant of m that is not userId.
// For a self-message it returns userId.
func (m Message) Counterpart(userId int64) int64 {
	if m.SenderId == userId {
		return m.ReceiverId
	}
	return m.SenderId
}

// Involves reports whether userId sent or received m.
func (m Message) Involves(userId int64) bool {
	return m.SenderId == userId || m.ReceiverId == userId
}

// MessageView is the transport-facing shape of a message, with both display
// names denormalized so clients never need a second lookup.
type MessageView struct {
	Id           int64     `json:"id"`
	SenderId     int64     `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverId   int64     `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewMessageView(m Message, sender, receiver UserSnapshot) MessageView {
	return MessageView{
		Id:           m.Id,
		SenderId:     m.SenderId,
		SenderName:   sender.DisplayName,
		ReceiverId:   m.ReceiverId,
		ReceiverName: receiver.DisplayName,
		Content:      m.Content,
		Timestamp:    m.Timestamp,
	}
}

type InboxEntry struct {
	CounterpartId   int64     `json:"counterpartId"`
	CounterpartName string    `json:"counterpartName"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
}

type SendMessageRequest struct {
	ReceiverId int64  `json:"receiverId" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required"`
}
