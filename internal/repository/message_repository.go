//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../mocks/mock_message_repository.go -package=mocks
package repository

import (
	"context"
	"time"
	"unicode/utf16"

	"adoptchat/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messagesCollection = "messages"

// MessageRepository is append-only: messages are saved once and only read
// afterwards. Implementations must be safe for concurrent use.
type MessageRepository interface {
	// Save assigns the id and timestamp and persists the message atomically.
	Save(ctx context.Context, message entity.Message) (entity.Message, error)
	// FindConversation returns every message exchanged between a and b in
	// either direction, oldest first.
	FindConversation(ctx context.Context, a, b int64) ([]entity.Message, error)
	// FindAllForUser returns every message sent or received by userId,
	// newest first.
	FindAllForUser(ctx context.Context, userId int64) ([]entity.Message, error)
}

type messageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// EnsureMessageIndexes creates the indexes backing both read queries.
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(messagesCollection)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return storageError("create message indexes", err)
	}
	return nil
}

func (r *messageRepository) Save(ctx context.Context, message entity.Message) (entity.Message, error) {
	if err := checkContentLength(message.Content); err != nil {
		return entity.Message{}, err
	}

	id, err := nextSequence(ctx, r.db, messagesCollection)
	if err != nil {
		return entity.Message{}, storageError("allocate message id", err)
	}

	message.Id = id
	message.Timestamp = now()

	collection := r.db.Collection(messagesCollection)
	if _, err := collection.InsertOne(ctx, message); err != nil {
		return entity.Message{}, storageError("insert message", err)
	}

	return message, nil
}

func (r *messageRepository) FindConversation(ctx context.Context, a, b int64) ([]entity.Message, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	return r.find(ctx, "find conversation", filter, opts)
}

func (r *messageRepository) FindAllForUser(ctx context.Context, userId int64) ([]entity.Message, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userId},
			{"receiverId": userId},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	return r.find(ctx, "find messages for user", filter, opts)
}

func (r *messageRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]entity.Message, error) {
	collection := r.db.Collection(messagesCollection)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer cursor.Close(ctx)

	messages := make([]entity.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, storageError(op, err)
	}

	return messages, nil
}

// now is truncated to the precision of a BSON datetime so the value returned
// by Save equals the one read back later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func checkContentLength(content string) error {
	if len(utf16.Encode([]rune(content))) > entity.MaxContentLength {
		return storageError("save message", ErrContentTooLong)
	}
	return nil
}
