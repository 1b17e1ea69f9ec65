package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionRetentionSeconds = 24 * 60 * 60

// NewStore wires every MongoDB repository against db
func NewStore(db *mongo.Database) *repositories.Store {
	return &repositories.Store{
		Config:    NewSystemConfigRepository(db),
		Locks:     NewLockRepository(db),
		Tickets:   NewTicketRepository(db),
		Draws:     NewDrawRepository(db),
		Sessions:  NewSessionRepository(db),
		Payments:  NewPaymentRepository(db),
		AuditLogs: NewAuditLogRepository(db),
		Blacklist: NewBlacklistRepository(db),
	}
}

// EnsureIndexes creates the indexes the repositories query on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"tickets": {
			{Keys: bson.D{{Key: "drawId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "phone", Value: 1}}},
		},
		"payments": {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
			{Keys: bson.D{{Key: "drawId", Value: 1}}},
		},
		"ussd_sessions": {
			// sessions are kept for a day past expiry so gateway retries still replay
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(sessionRetentionSeconds)},
		},
		"audit_logs": {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		"blacklist": {
			{Keys: bson.D{{Key: "msisdn", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"draws": {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
