package repository

import (
	"context"
	"fmt"

	"discord-auth-gateway/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAllowList implements AllowList using MongoDB. Entries live in the
// whitelist collection keyed by discord_id; existence is the sole signal.
type MongoAllowList struct {
	collection *mongo.Collection
}

// NewMongoAllowList creates a new MongoDB allow-list repository.
func NewMongoAllowList(db *mongo.Database) ports.AllowList {
	return &MongoAllowList{
		collection: db.Collection("whitelist"),
	}
}

// Contains reports whether an entry exists for the given identity.
func (r *MongoAllowList) Contains(ctx context.Context, identity string) (bool, error) {
	filter := bson.M{"discord_id": identity}

	err := r.collection.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query whitelist: %w", err)
	}

	return true, nil
}
