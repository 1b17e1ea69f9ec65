package models

import "time"

// JackpotStatus is the public view of the live jackpot
type JackpotStatus struct {
	CurrentAmount   float64   `json:"currentAmount"`
	Currency        string    `json:"currency"`
	NextDrawDate    time.Time `json:"nextDrawDate"`
	LastDrawID      string    `json:"lastDrawId,omitempty"`
	LastDrawDate    time.Time `json:"lastDrawDate,omitempty"`
	LastWinnerCount int       `json:"lastWinnerCount"`
	LastWinAmount   float64   `json:"lastWinAmount,omitempty"` // prize per winner of the last draw
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}
