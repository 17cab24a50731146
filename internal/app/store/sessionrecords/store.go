// internal/app/store/sessionrecords/store.go
package sessionrecords

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is a signed-in user's session record. The browser cookie holds
// only ID; Data is the encoded record.
type Record struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store keeps session records in MongoDB. It satisfies auth.RecordStore.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new session record Store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("session_records"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the TTL index that removes expired records.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_session_records_ttl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Put creates or replaces the record with id.
func (s *Store) Put(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	rec := Record{
		ID:        id,
		Data:      string(data),
		ExpiresAt: expiresAt.UTC(),
		UpdatedAt: s.now(),
	}
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, rec, options.Replace().SetUpsert(true))
	return err
}

// Get returns the record data for id. found is false when the record is
// missing or past its expiry; the TTL monitor only runs once a minute.
func (s *Store) Get(ctx context.Context, id string) (data []byte, found bool, err error) {
	var rec Record
	err = s.c.FindOne(ctx, bson.M{
		"_id":        id,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(rec.Data), true, nil
}

// Delete removes the record with id. Deleting a missing record is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
