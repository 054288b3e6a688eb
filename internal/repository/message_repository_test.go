package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"adoptchat/internal/entity"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func messageDoc(id, senderId, receiverId int64, content string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "senderId", Value: senderId},
		{Key: "receiverId", Value: receiverId},
		{Key: "content", Value: content},
		{Key: "timestamp", Value: at},
	}
}

type findCommand struct {
	Filter struct {
		Or []bson.M `bson:"$or"`
	} `bson:"filter"`
	Sort bson.D `bson:"sort"`
}

// sentFind decodes the find command the repository issued.
func sentFind(mt *mtest.T) findCommand {
	mt.Helper()
	req := require.New(mt)

	evt := mt.GetStartedEvent()
	req.NotNil(evt)
	req.Equal("find", evt.CommandName)
	req.Equal(messagesCollection, evt.Command.Lookup("find").StringValue())

	var cmd findCommand
	req.NoError(bson.Unmarshal(evt.Command, &cmd))
	return cmd
}

func TestMessageRepository_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("should take the id from the counter", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: messagesCollection},
				{Key: "seq", Value: int64(41)},
			}}),
			mtest.CreateSuccessResponse(),
		)

		saved, err := repo.Save(ctx, entity.Message{SenderId: 1, ReceiverId: 2, Content: "Does Bella get along with cats?"})

		req.NoError(err)
		req.Equal(int64(41), saved.Id)
		req.Equal("Does Bella get along with cats?", saved.Content)
		req.Equal(time.UTC, saved.Timestamp.Location())
		req.Equal(saved.Timestamp, saved.Timestamp.Truncate(time.Millisecond))
	})

	mt.Run("should wrap insert failures", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: messagesCollection},
				{Key: "seq", Value: int64(1)},
			}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}),
		)

		_, err := repo.Save(ctx, entity.Message{SenderId: 1, ReceiverId: 2, Content: "hi"})

		var storageErr *StorageError
		req.ErrorAs(err, &storageErr)
		req.Equal("insert message", storageErr.Op)
	})

	mt.Run("should wrap counter failures", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized on adoptchat",
			Name:    "Unauthorized",
		}))

		_, err := repo.Save(ctx, entity.Message{SenderId: 1, ReceiverId: 2, Content: "hi"})

		var storageErr *StorageError
		req.ErrorAs(err, &storageErr)
		req.Equal("allocate message id", storageErr.Op)
	})

	mt.Run("should reject oversized content before touching the database", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)

		_, err := repo.Save(ctx, entity.Message{SenderId: 1, ReceiverId: 2, Content: strings.Repeat("x", entity.MaxContentLength+1)})

		req.ErrorIs(err, ErrContentTooLong)
	})
}

func TestMessageRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ns := "adoptchat." + messagesCollection

	mt.Run("should decode the conversation in server order", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			messageDoc(1, 1, 2, "hello", at),
			messageDoc(2, 2, 1, "hi there", at.Add(time.Minute)),
		))

		messages, err := repo.FindConversation(ctx, 2, 1)

		req.NoError(err)
		cmd := sentFind(mt)
		req.ElementsMatch([]bson.M{
			{"senderId": int64(2), "receiverId": int64(1)},
			{"senderId": int64(1), "receiverId": int64(2)},
		}, cmd.Filter.Or)
		req.Equal(bson.D{{Key: "timestamp", Value: int32(1)}, {Key: "_id", Value: int32(1)}}, cmd.Sort)
		req.Equal([]entity.Message{
			{Id: 1, SenderId: 1, ReceiverId: 2, Content: "hello", Timestamp: at},
			{Id: 2, SenderId: 2, ReceiverId: 1, Content: "hi there", Timestamp: at.Add(time.Minute)},
		}, messages)
	})

	mt.Run("should ask for the user's messages newest first", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			messageDoc(3, 8, 5, "is she house trained?", at.Add(time.Hour)),
			messageDoc(2, 4, 8, "yes", at),
		))

		messages, err := repo.FindAllForUser(ctx, 8)

		req.NoError(err)
		req.Len(messages, 2)
		req.Equal(int64(3), messages[0].Id)
		cmd := sentFind(mt)
		req.ElementsMatch([]bson.M{
			{"senderId": int64(8)},
			{"receiverId": int64(8)},
		}, cmd.Filter.Or)
		req.Equal(bson.D{{Key: "timestamp", Value: int32(-1)}, {Key: "_id", Value: int32(-1)}}, cmd.Sort)
	})

	mt.Run("should return an empty slice when nothing matches", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		messages, err := repo.FindAllForUser(ctx, 8)

		req.NoError(err)
		req.NotNil(messages)
		req.Empty(messages)
	})

	mt.Run("should wrap query failures", func(mt *mtest.T) {
		req := require.New(mt)
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := repo.FindAllForUser(ctx, 8)

		var storageErr *StorageError
		req.ErrorAs(err, &storageErr)
		req.Equal("find messages for user", storageErr.Op)
	})
}
