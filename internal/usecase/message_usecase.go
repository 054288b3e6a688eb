//go:generate go run go.uber.org/mock/mockgen -source=message_usecase.go -destination=../mocks/mock_message_usecase.go -package=mocks
package usecase

import (
	"context"
	"errors"

	"adoptchat/internal/entity"
	"adoptchat/internal/repository"

	"github.com/samber/lo"
)

type MessageUsecase interface {
	// SendMessage validates both participants and persists the message. Live
	// delivery is left to the caller, once SendMessage has returned.
	SendMessage(ctx context.Context, senderId, receiverId int64, content string) (entity.MessageView, error)
	// GetConversation returns the history between a and b, oldest first.
	GetConversation(ctx context.Context, a, b int64) ([]entity.MessageView, error)
	// GetInbox returns the latest message per counterpart of userId, most
	// recently active counterpart first.
	GetInbox(ctx context.Context, userId int64) ([]entity.InboxEntry, error)
}

type messageUsecase struct {
	messageRepo repository.MessageRepository
	userUc      UserUsecase
}

func NewMessageUseCase(messageRepo repository.MessageRepository, userUc UserUsecase) MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		userUc:      userUc,
	}
}

func (m *messageUsecase) SendMessage(ctx context.Context, senderId, receiverId int64, content string) (entity.MessageView, error) {
	sender, err := m.resolve(ctx, "sender", senderId)
	if err != nil {
		return entity.MessageView{}, err
	}

	receiver, err := m.resolve(ctx, "receiver", receiverId)
	if err != nil {
		return entity.MessageView{}, err
	}

	saved, err := m.messageRepo.Save(ctx, entity.Message{
		SenderId:   sender.Id,
		ReceiverId: receiver.Id,
		Content:    content,
	})
	if err != nil {
		return entity.MessageView{}, err
	}

	return entity.NewMessageView(saved, sender, receiver), nil
}

func (m *messageUsecase) GetConversation(ctx context.Context, a, b int64) ([]entity.MessageView, error) {
	messages, err := m.messageRepo.FindConversation(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []entity.MessageView{}, nil
	}

	users, err := m.resolveAll(ctx, lo.Uniq([]int64{a, b}))
	if err != nil {
		return nil, err
	}

	return lo.Map(messages, func(msg entity.Message, _ int) entity.MessageView {
		return entity.NewMessageView(msg, users[msg.SenderId], users[msg.ReceiverId])
	}), nil
}

func (m *messageUsecase) GetInbox(ctx context.Context, userId int64) ([]entity.InboxEntry, error) {
	messages, err := m.messageRepo.FindAllForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	users, err := m.resolveAll(ctx, counterparts(userId, messages))
	if err != nil {
		return nil, err
	}

	return AggregateInbox(userId, messages, users), nil
}

func (m *messageUsecase) resolve(ctx context.Context, role string, userId int64) (entity.UserSnapshot, error) {
	user, err := m.userUc.Resolve(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.UserSnapshot{}, &NotFoundError{Entity: role, Id: userId}
		}
		return entity.UserSnapshot{}, err
	}
	return user, nil
}

func (m *messageUsecase) resolveAll(ctx context.Context, userIds []int64) (map[int64]entity.UserSnapshot, error) {
	users := make(map[int64]entity.UserSnapshot, len(userIds))
	for _, userId := range userIds {
		user, err := m.resolve(ctx, "user", userId)
		if err != nil {
			return nil, err
		}
		users[userId] = user
	}
	return users, nil
}
