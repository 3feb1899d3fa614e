package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/cman/domain"
	"github.com/beka-birhanu/cman/service/i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxRecent = 100

var ErrDuplicateMatch = errors.New("match already recorded")

// MatchRepo persists finished matches in MongoDB.
type MatchRepo struct {
	collection *mongo.Collection
}

// NewMatchRepo creates a MatchRepo on the given database and collection.
func NewMatchRepo(client *mongo.Client, dbName, collectionName string) *MatchRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &MatchRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the index used by Recent.
func (r *MatchRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ended_at", Value: -1}},
	})
	return err
}

// Save inserts a finished match.
func (r *MatchRepo) Save(ctx context.Context, m *domain.MatchRecord) error {
	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("unexpected error: %w", err)
	}
	return nil
}

// Record implements i.MatchRecorder.
func (r *MatchRepo) Record(ctx context.Context, m *domain.MatchRecord) error {
	return r.Save(ctx, m)
}

// Recent returns at most limit matches, newest first.
func (r *MatchRepo) Recent(ctx context.Context, limit int) ([]*domain.MatchRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ended_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	defer cursor.Close(ctx)

	matches := make([]*domain.MatchRecord, 0)
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	return matches, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	if limit > maxRecent {
		return maxRecent
	}
	return limit
}

var (
	_ i.MatchRepo     = &MatchRepo{}
	_ i.MatchRecorder = &MatchRepo{}
)
