package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogRepository implements repositories.AuditLogRepository
type AuditLogRepository struct {
	collection *mongo.Collection
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *mongo.Database) repositories.AuditLogRepository {
	return &AuditLogRepository{
		collection: db.Collection("audit_logs"),
	}
}

// Create appends an entry to the audit trail
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindRecent lists the latest audit entries, newest first
func (r *AuditLogRepository) FindRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	return entries, nil
}
