package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"adoptchat/internal/entity"

	"github.com/samber/lo"
)

type memoryMessageRepository struct {
	mu       sync.RWMutex
	seq      int64
	messages []entity.Message
	clock    func() time.Time
}

// NewMemoryMessageRepository keeps messages in process memory. A nil clock
// stamps messages with the current time.
func NewMemoryMessageRepository(clock func() time.Time) MessageRepository {
	if clock == nil {
		clock = now
	}
	return &memoryMessageRepository{clock: clock}
}

func (r *memoryMessageRepository) Save(_ context.Context, message entity.Message) (entity.Message, error) {
	if err := checkContentLength(message.Content); err != nil {
		return entity.Message{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	message.Id = r.seq
	message.Timestamp = r.clock()
	r.messages = append(r.messages, message)

	return message, nil
}

func (r *memoryMessageRepository) FindConversation(_ context.Context, a, b int64) ([]entity.Message, error) {
	r.mu.RLock()
	messages := lo.Filter(r.messages, func(m entity.Message, _ int) bool {
		return (m.SenderId == a && m.ReceiverId == b) || (m.SenderId == b && m.ReceiverId == a)
	})
	r.mu.RUnlock()

	slices.SortFunc(messages, chronological)
	return messages, nil
}

func (r *memoryMessageRepository) FindAllForUser(_ context.Context, userId int64) ([]entity.Message, error) {
	r.mu.RLock()
	messages := lo.Filter(r.messages, func(m entity.Message, _ int) bool {
		return m.Involves(userId)
	})
	r.mu.RUnlock()

	slices.SortFunc(messages, func(x, y entity.Message) int {
		return chronological(y, x)
	})
	return messages, nil
}

// chronological orders by timestamp, then by insertion id.
func chronological(x, y entity.Message) int {
	if c := x.Timestamp.Compare(y.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(x.Id, y.Id)
}
