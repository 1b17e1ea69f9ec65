package models

import "time"

type PaymentDirection string

const (
	PaymentCollection   PaymentDirection = "COLLECTION"
	PaymentDisbursement PaymentDirection = "DISBURSEMENT"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// Payment records one mobile-money movement, keyed by a deterministic reference
type Payment struct {
	Reference     string           `bson:"_id" json:"reference"`
	Direction     PaymentDirection `bson:"direction" json:"direction"`
	SessionID     string           `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	DrawID        string           `bson:"drawId,omitempty" json:"drawId,omitempty"`
	TicketID      string           `bson:"ticketId,omitempty" json:"ticketId,omitempty"`
	Phone         string           `bson:"phone" json:"phone"`
	Amount        float64          `bson:"amount" json:"amount"`
	Provider      string           `bson:"provider" json:"provider"`
	Status        PaymentStatus    `bson:"status" json:"status"`
	TransactionID string           `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Error         string           `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt     time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time        `bson:"updatedAt" json:"updatedAt"`
}
