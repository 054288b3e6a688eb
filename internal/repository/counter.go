package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

type counter struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// nextSequence atomically increments and returns the named counter. Ids handed
// out this way grow with insertion order.
func nextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	collection := db.Collection(countersCollection)
	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return 0, err
	}
	return c.Seq, nil
}
