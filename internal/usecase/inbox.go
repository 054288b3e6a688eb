package usecase

import (
	"adoptchat/internal/entity"

	"github.com/samber/lo"
)

// AggregateInbox folds the history of userId, given newest first, into one
// entry per counterpart. The first message seen for a counterpart is its most
// recent one; entries keep that first-seen order.
func AggregateInbox(userId int64, messages []entity.Message, users map[int64]entity.UserSnapshot) []entity.InboxEntry {
	latest := lo.UniqBy(messages, func(m entity.Message) int64 {
		return m.Counterpart(userId)
	})

	return lo.Map(latest, func(m entity.Message, _ int) entity.InboxEntry {
		counterpartId := m.Counterpart(userId)
		return entity.InboxEntry{
			CounterpartId:   counterpartId,
			CounterpartName: users[counterpartId].DisplayName,
			LastMessage:     m.Content,
			LastMessageAt:   m.Timestamp,
		}
	})
}

// counterparts lists the distinct counterparts of userId in first-seen order.
func counterparts(userId int64, messages []entity.Message) []int64 {
	return lo.Uniq(lo.Map(messages, func(m entity.Message, _ int) int64 {
		return m.Counterpart(userId)
	}))
}
