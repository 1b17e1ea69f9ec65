package models

import "time"

// CurrentDrawID marks tickets that belong to the open betting window
const CurrentDrawID = "current"

type TicketStatus string

const (
	TicketStatusPending TicketStatus = "PENDING"
	TicketStatusSuccess TicketStatus = "SUCCESS"
	TicketStatusFailed  TicketStatus = "FAILED"
)

// PayoutStatus tracks the disbursement of a winning ticket's prize
type PayoutStatus string

const (
	PayoutStatusNone        PayoutStatus = "NONE"
	PayoutStatusPending     PayoutStatus = "PENDING"
	PayoutStatusPaid        PayoutStatus = "PAID"
	PayoutStatusFailed      PayoutStatus = "FAILED"
	PayoutStatusUnconfirmed PayoutStatus = "UNCONFIRMED"
)

// Ticket is one stake entered into a draw
type Ticket struct {
	ID           string       `bson:"_id" json:"id"`
	Phone        string       `bson:"phone" json:"phone"`
	Stake        float64      `bson:"stake" json:"stake"`
	DrawID       string       `bson:"drawId" json:"drawId"`
	Timestamp    time.Time    `bson:"timestamp" json:"timestamp"`
	Status       TicketStatus `bson:"status" json:"status"`
	IsWinner     bool         `bson:"isWinner" json:"isWinner"`
	PrizeAmount  float64      `bson:"prizeAmount" json:"prizeAmount"`
	SessionID    string       `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Provider     string       `bson:"provider,omitempty" json:"provider,omitempty"`
	PaymentRef   string       `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	PayoutStatus PayoutStatus `bson:"payoutStatus" json:"payoutStatus"`
	PayoutRef    string       `bson:"payoutRef,omitempty" json:"payoutRef,omitempty"`
	SettledAt    time.Time    `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
}

// TicketSettlement is the single mutation applied to a ticket when its draw closes
type TicketSettlement struct {
	DrawID       string
	IsWinner     bool
	PrizeAmount  float64
	PayoutStatus PayoutStatus
	PayoutRef    string
	SettledAt    time.Time
}
