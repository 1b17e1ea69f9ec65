package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LockRepository implements repositories.LockRepository on a "locks" collection.
// A lock is a document whose _id is the lock name; holding it means owning an
// unexpired lease.
type LockRepository struct {
	collection *mongo.Collection
}

// NewLockRepository creates a new LockRepository
func NewLockRepository(db *mongo.Database) repositories.LockRepository {
	return &LockRepository{
		collection: db.Collection("locks"),
	}
}

// Acquire takes the lease when it is free or expired
func (r *LockRepository) Acquire(ctx context.Context, name, owner string, ttl time.Duration) error {
	now := time.Now()
	filter := bson.M{
		"_id": name,
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$lt": now}},
			bson.M{"owner": owner},
		},
	}
	update := bson.M{"$set": bson.M{
		"owner":      owner,
		"acquiredAt": now,
		"expiresAt":  now.Add(ttl),
	}}
	// A held lease does not match the filter, so the upsert collides on _id.
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrLockHeld
	}
	return err
}

// Renew pushes the lease expiry forward while owner still holds it
func (r *LockRepository) Renew(ctx context.Context, name, owner string, ttl time.Duration) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": name, "owner": owner},
		bson.M{"$set": bson.M{"expiresAt": time.Now().Add(ttl)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrLockHeld
	}
	return nil
}

// Release drops the lease if it is still held by owner
func (r *LockRepository) Release(ctx context.Context, name, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": name, "owner": owner})
	return err
}
