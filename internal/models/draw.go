package models

import "time"

// DrawStatus represents the status of a draw
type DrawStatus string

const (
	DrawStatusUpcoming  DrawStatus = "UPCOMING"
	DrawStatusOngoing   DrawStatus = "ONGOING"
	DrawStatusCompleted DrawStatus = "COMPLETED"
	DrawStatusFailed    DrawStatus = "FAILED"
)

// Draw is the settlement record of one closed betting window
type Draw struct {
	ID             string     `bson:"_id" json:"id"`
	ScheduledTime  time.Time  `bson:"scheduledTime" json:"scheduledTime"`
	CompletedTime  time.Time  `bson:"completedTime,omitempty" json:"completedTime,omitempty"`
	Status         DrawStatus `bson:"status" json:"status"`
	Trigger        string     `bson:"trigger" json:"trigger"` // SCHEDULED or MANUAL
	TicketCount    int        `bson:"ticketCount" json:"ticketCount"`
	TotalStakes    float64    `bson:"totalStakes" json:"totalStakes"`
	JackpotPool    float64    `bson:"jackpotPool" json:"jackpotPool"`
	PayoutAmount   float64    `bson:"payoutAmount" json:"payoutAmount"`
	PrizePerWinner float64    `bson:"prizePerWinner" json:"prizePerWinner"`
	Winners        []string   `bson:"winners" json:"winners"`
	FailedPayouts  []string   `bson:"failedPayouts,omitempty" json:"failedPayouts,omitempty"`
	// tickets whose settlement write failed and are still in the open window
	UnsettledTickets []string  `bson:"unsettledTickets,omitempty" json:"unsettledTickets,omitempty"`
	FraudSuspected   bool      `bson:"fraudSuspected" json:"fraudSuspected"`
	RadioScript      string    `bson:"radioScript,omitempty" json:"radioScript,omitempty"`
	NextJackpot      float64   `bson:"nextJackpot" json:"nextJackpot"`
	ExecutionLog     []string  `bson:"executionLog,omitempty" json:"executionLog,omitempty"`
	ErrorMessage     string    `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

const (
	DrawTriggerScheduled = "SCHEDULED"
	DrawTriggerManual    = "MANUAL"
)
