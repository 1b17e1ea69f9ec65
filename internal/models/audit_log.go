package models

import "time"

// AuditAction names an auditable event
type AuditAction string

const (
	AuditStakeCollected     AuditAction = "STAKE_COLLECTED"
	AuditPaymentFailed      AuditAction = "MOMO_PAYMENT_FAILED"
	AuditFraudAlert         AuditAction = "FRAUD_ALERT"
	AuditDisbursement       AuditAction = "MOMO_DISBURSEMENT"
	AuditDisbursementFailed AuditAction = "MOMO_DISBURSEMENT_FAILED"
	AuditDrawFinalized      AuditAction = "DRAW_FINALIZED"
	AuditConfigUpdated      AuditAction = "CONFIG_UPDATED"
	AuditBlacklistUpdated   AuditAction = "BLACKLIST_UPDATED"
)

// AuditLog is an append-only record of something money- or config-related happening
type AuditLog struct {
	ID        string      `bson:"_id" json:"id"`
	Action    AuditAction `bson:"action" json:"action"`
	Actor     string      `bson:"actor" json:"actor"`
	Details   string      `bson:"details" json:"details"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
}
