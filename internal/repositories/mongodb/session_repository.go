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

// SessionRepository implements repositories.SessionRepository
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *mongo.Database) repositories.SessionRepository {
	return &SessionRepository{
		collection: db.Collection("ussd_sessions"),
	}
}

// FindByID loads a session by its gateway session id
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Save upserts the session state
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, options.Replace().SetUpsert(true))
	return err
}

// BeginPayment replaces the session unless the stored copy has a collection in
// flight. A matching miss makes the upsert collide on _id, as with the locks.
func (r *SessionRepository) BeginPayment(ctx context.Context, session *models.Session, now time.Time) (bool, error) {
	filter := bson.M{
		"_id": session.ID,
		"$or": bson.A{
			bson.M{"paymentStatus": bson.M{"$ne": models.PaymentInitiated}},
			bson.M{"collectingUntil": bson.M{"$not": bson.M{"$gt": now}}},
		},
	}
	_, err := r.collection.ReplaceOne(ctx, filter, session, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
