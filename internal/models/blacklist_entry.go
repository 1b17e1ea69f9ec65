package models

import "time"

// BlacklistEntry represents an entry in the MSISDN blacklist
type BlacklistEntry struct {
	MSISDN    string    `bson:"msisdn" json:"msisdn" binding:"required"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	AddedBy   string    `bson:"addedBy,omitempty" json:"addedBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
