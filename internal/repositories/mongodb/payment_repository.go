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

// PaymentRepository implements repositories.PaymentRepository
type PaymentRepository struct {
	collection *mongo.Collection
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *mongo.Database) repositories.PaymentRepository {
	return &PaymentRepository{
		collection: db.Collection("payments"),
	}
}

// Upsert merges the payment into the record for its reference
func (r *PaymentRepository) Upsert(ctx context.Context, p *models.Payment) error {
	now := time.Now()
	p.UpdatedAt = now
	set := bson.M{
		"direction":     p.Direction,
		"sessionId":     p.SessionID,
		"drawId":        p.DrawID,
		"ticketId":      p.TicketID,
		"phone":         p.Phone,
		"amount":        p.Amount,
		"provider":      p.Provider,
		"status":        p.Status,
		"transactionId": p.TransactionID,
		"error":         p.Error,
		"updatedAt":     now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.Reference}, update, options.Update().SetUpsert(true))
	return err
}

// FindByReference finds a payment by its reference
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": reference}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
