package models

import "time"

// SessionStep is a state of the USSD conversation
type SessionStep string

const (
	StepWelcome           SessionStep = "WELCOME"
	StepConfirm           SessionStep = "CONFIRM"
	StepProcessingPayment SessionStep = "PROCESSING_PAYMENT"
	StepCompleted         SessionStep = "COMPLETED"
	StepPaymentFailed     SessionStep = "PAYMENT_FAILED"
	StepCancelled         SessionStep = "CANCELLED"
	StepInvalid           SessionStep = "INVALID"
	StepInvalidConfirm    SessionStep = "INVALID_CONFIRM"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusFailed    SessionStatus = "FAILED"
)

type PaymentProgress string

const (
	PaymentNotStarted PaymentProgress = "NOT_STARTED"
	PaymentInitiated  PaymentProgress = "INITIATED"
	PaymentSucceeded  PaymentProgress = "SUCCESS"
	PaymentFailed     PaymentProgress = "FAILED"
)

type TicketProgress string

const (
	TicketNotCreated TicketProgress = "NOT_CREATED"
	TicketCreated    TicketProgress = "SUCCESS"
)

// Session is the persisted state of one USSD dial interaction
type Session struct {
	ID              string          `bson:"_id" json:"id"`
	MSISDN          string          `bson:"msisdn" json:"msisdn"`
	UserID          string          `bson:"userId,omitempty" json:"userId,omitempty"`
	Step            SessionStep     `bson:"step" json:"step"`
	Status          SessionStatus   `bson:"status" json:"status"`
	Steps           []string        `bson:"steps" json:"steps"`
	Trail           []SessionStep   `bson:"trail,omitempty" json:"trail,omitempty"`
	StakeAmount     float64         `bson:"stakeAmount" json:"stakeAmount"`
	PaymentStatus   PaymentProgress `bson:"paymentStatus" json:"paymentStatus"`
	TicketStatus    TicketProgress  `bson:"ticketStatus" json:"ticketStatus"`
	PaymentRef      string          `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	TicketID        string          `bson:"ticketId,omitempty" json:"ticketId,omitempty"`
	LastResponse    string          `bson:"lastResponse,omitempty" json:"lastResponse,omitempty"`
	CollectingUntil time.Time       `bson:"collectingUntil,omitempty" json:"collectingUntil,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
	ExpiresAt       time.Time       `bson:"expiresAt" json:"expiresAt"`
}

// IsTerminal reports whether the session can no longer change state
func (s *Session) IsTerminal() bool {
	return s.Status != SessionStatusActive && s.Status != ""
}

// IsCollecting reports whether a stake collection started before now is still in flight
func (s *Session) IsCollecting(now time.Time) bool {
	return s.PaymentStatus == PaymentInitiated && now.Before(s.CollectingUntil)
}
