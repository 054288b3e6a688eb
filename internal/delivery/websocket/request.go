package websocket

const (
	FrameSend        = "send"
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
)

// IncomingFrame is any frame a client may send. Fields irrelevant to Type are
// ignored.
type IncomingFrame struct {
	Type        string `json:"type"`
	ReceiverId  int64  `json:"receiverId,omitempty"`
	Content     string `json:"content,omitempty"`
	Destination string `json:"destination,omitempty"`
}

type subscriptionRequest struct {
	Destination string `validate:"required,startswith=user:|startswith=conversation:"`
}
