package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlacklistRepository implements the repositories.BlacklistRepository interface
type BlacklistRepository struct {
	collection *mongo.Collection
}

// NewBlacklistRepository creates a new BlacklistRepository
func NewBlacklistRepository(db *mongo.Database) repositories.BlacklistRepository {
	return &BlacklistRepository{
		collection: db.Collection("blacklist"),
	}
}

// IsBlacklisted checks if an MSISDN exists in the blacklist collection.
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, msisdn string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"msisdn": msisdn})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add adds an MSISDN to the blacklist; adding it twice updates the reason
func (r *BlacklistRepository) Add(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	update := bson.M{
		"$set":         bson.M{"reason": entry.Reason, "addedBy": entry.AddedBy},
		"$setOnInsert": bson.M{"createdAt": entry.CreatedAt},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"msisdn": entry.MSISDN}, update, options.Update().SetUpsert(true))
	return err
}

// Remove removes an MSISDN from the blacklist
func (r *BlacklistRepository) Remove(ctx context.Context, msisdn string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"msisdn": msisdn})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindAll finds all blacklist entries
func (r *BlacklistRepository) FindAll(ctx context.Context) ([]*models.BlacklistEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.BlacklistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.BlacklistEntry{}
	}
	return entries, nil
}
