package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure Storage implements storage.Backend.
var _ storage.Backend = (*Storage)(nil)

type document struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// Storage is a storage.Backend on a MongoDB collection.
//
// The server's TTL monitor removes expired documents roughly once a minute,
// so reads also filter on expires_at.
type Storage struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewStorage wraps coll. Call EnsureIndexes once at startup.
func NewStorage(coll *mongo.Collection) *Storage {
	return &Storage{coll: coll, now: time.Now}
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return errors.Join(ErrFailedToCreateIndex, err)
	}
	return nil
}

// Get implements storage.Backend.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filter := bson.D{
		{Key: "_id", Value: key},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "expires_at", Value: bson.D{{Key: "$exists", Value: false}}}},
			bson.D{{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: s.now()}}}},
		}},
	}

	var doc document
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Data, true, nil
}

// Set implements storage.Backend.
func (s *Storage) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if data == nil {
		_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
		return err
	}

	doc := document{Key: key, Data: data}
	if ttl > 0 {
		t := s.now().Add(ttl)
		doc.ExpiresAt = &t
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}
