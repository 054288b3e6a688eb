//go:generate go run go.uber.org/mock/mockgen -source=fanout.go -destination=../mocks/mock_fanout.go -package=mocks
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"adoptchat/infrastructure/ws"
	"adoptchat/internal/entity"
)

// DeliveryFanout pushes a persisted message to live sessions.
//
// Delivery is best-effort: it does not wait for, retry or verify delivery, and
// a failure on one destination is logged without affecting the others. The
// message is already stored; the live channel is a convenience.
type DeliveryFanout interface {
	Deliver(ctx context.Context, view entity.MessageView)
}

type deliveryFanout struct {
	publisher ws.Publisher
	log       *slog.Logger
}

func NewDeliveryFanout(publisher ws.Publisher, log *slog.Logger) DeliveryFanout {
	return &deliveryFanout{
		publisher: publisher,
		log:       log,
	}
}

// Destinations lists, in publish order, where a message between sender and
// receiver is delivered: the receiver's queue, the sender's own queue (echo)
// and the shared conversation topic.
func Destinations(senderId, receiverId int64) []string {
	return []string{
		entity.UserDestination(receiverId),
		entity.UserDestination(senderId),
		entity.ConversationDestination(entity.ConversationKey(senderId, receiverId)),
	}
}

func (f *deliveryFanout) Deliver(ctx context.Context, view entity.MessageView) {
	payload, err := json.Marshal(view)
	if err != nil {
		f.log.Error("Encoding message for live delivery failed", "message", view.Id, "error", err)
		return
	}

	for _, destination := range Destinations(view.SenderId, view.ReceiverId) {
		if err := f.publisher.Publish(ctx, destination, payload); err != nil {
			f.log.Warn("Live delivery failed", "message", view.Id, "destination", destination, "error", err)
		}
	}
}
