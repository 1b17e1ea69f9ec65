package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SystemConfigRepository implements repositories.SystemConfigRepository
type SystemConfigRepository struct {
	collection *mongo.Collection
}

// NewSystemConfigRepository creates a new SystemConfigRepository
func NewSystemConfigRepository(db *mongo.Database) repositories.SystemConfigRepository {
	return &SystemConfigRepository{
		collection: db.Collection("system_config"),
	}
}

var singletonFilter = bson.M{"_id": models.SystemConfigID}

// Get retrieves the configuration singleton
func (r *SystemConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	err := r.collection.FindOne(ctx, singletonFilter).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Initialize writes the bootstrap configuration unless one already exists
func (r *SystemConfigRepository) Initialize(ctx context.Context, cfg *models.SystemConfig) (bool, error) {
	cfg.ID = models.SystemConfigID
	cfg.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, singletonFilter, bson.M{"$setOnInsert": cfg}, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Merge updates only the named fields
func (r *SystemConfigRepository) Merge(ctx context.Context, fields map[string]interface{}, updatedBy string) (*models.SystemConfig, error) {
	set := bson.M{"updatedAt": time.Now(), "updatedBy": updatedBy}
	for k, v := range fields {
		set[k] = v
	}
	return r.findOneAndUpdate(ctx, bson.M{"$set": set})
}

// IncrementJackpot atomically adds delta to the current jackpot
func (r *SystemConfigRepository) IncrementJackpot(ctx context.Context, delta float64) error {
	res, err := r.collection.UpdateOne(ctx, singletonFilter, bson.M{
		"$inc": bson.M{"currentJackpot": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ApplySettlement rolls the configuration into the next betting window
func (r *SystemConfigRepository) ApplySettlement(ctx context.Context, jackpotDelta float64, nextDrawTime time.Time) (*models.SystemConfig, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"currentJackpot":    bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$currentJackpot", jackpotDelta}}}},
			"nextDrawTime":      nextDrawTime,
			"fixedPayoutAmount": 0,
			"updatedAt":         time.Now(),
			"updatedBy":         "draw-engine",
		}}},
	}
	return r.findOneAndUpdate(ctx, pipeline)
}

func (r *SystemConfigRepository) findOneAndUpdate(ctx context.Context, update interface{}) (*models.SystemConfig, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var cfg models.SystemConfig
	err := r.collection.FindOneAndUpdate(ctx, singletonFilter, update, opts).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
