package mongodb

import (
	"context"
	"errors"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements repositories.TicketRepository
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// UpsertFromSession inserts the ticket once; retries with the same id change nothing
func (r *TicketRepository) UpsertFromSession(ctx context.Context, ticket *models.Ticket) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ticket.ID},
		bson.M{"$setOnInsert": ticket},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// FindByID finds a ticket by ID
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindOpen finds the paid tickets of the current betting window
func (r *TicketRepository) FindOpen(ctx context.Context) ([]*models.Ticket, error) {
	filter := bson.M{"drawId": models.CurrentDrawID, "status": models.TicketStatusSuccess}
	return r.find(ctx, filter)
}

// ClaimOpen moves the open tickets into drawID. Each ticket update is
// conditional on drawId still being "current", so concurrent claims are disjoint.
func (r *TicketRepository) ClaimOpen(ctx context.Context, drawID string) ([]*models.Ticket, error) {
	filter := bson.M{"drawId": models.CurrentDrawID, "status": models.TicketStatusSuccess}
	update := bson.M{"$set": bson.M{
		"drawId":       drawID,
		"payoutStatus": models.PayoutStatusPending,
	}}
	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"drawId": drawID})
}

// SettleTicket records the outcome on a ticket its draw has claimed but not settled
func (r *TicketRepository) SettleTicket(ctx context.Context, id string, s models.TicketSettlement) error {
	filter := bson.M{"_id": id, "drawId": s.DrawID, "payoutStatus": models.PayoutStatusPending}
	update := bson.M{"$set": bson.M{
		"isWinner":     s.IsWinner,
		"prizeAmount":  s.PrizeAmount,
		"payoutStatus": s.PayoutStatus,
		"payoutRef":    s.PayoutRef,
		"settledAt":    s.SettledAt,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindByDrawID finds the tickets settled into a draw
func (r *TicketRepository) FindByDrawID(ctx context.Context, drawID string) ([]*models.Ticket, error) {
	return r.find(ctx, bson.M{"drawId": drawID})
}

func (r *TicketRepository) find(ctx context.Context, filter bson.M) ([]*models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}
