package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no document
	ErrNotFound = errors.New("document not found")
	// ErrLockHeld is returned when another owner holds an unexpired lease
	ErrLockHeld = errors.New("lock held by another owner")
)

// SystemConfigRepository defines the operations on the configuration singleton.
// Writes never replace the whole document.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	// Initialize inserts cfg only if no configuration exists yet
	Initialize(ctx context.Context, cfg *models.SystemConfig) (bool, error)
	// Merge sets the named fields and returns the resulting document
	Merge(ctx context.Context, fields map[string]interface{}, updatedBy string) (*models.SystemConfig, error)
	IncrementJackpot(ctx context.Context, delta float64) error
	// ApplySettlement adds jackpotDelta (clamped at zero), sets the next draw time
	// and clears any fixed payout override in a single write
	ApplySettlement(ctx context.Context, jackpotDelta float64, nextDrawTime time.Time) (*models.SystemConfig, error)
}

// LockRepository defines leased advisory locks
type LockRepository interface {
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) error
	// Renew extends a lease still held by owner; ErrLockHeld means it was lost
	Renew(ctx context.Context, name, owner string, ttl time.Duration) error
	Release(ctx context.Context, name, owner string) error
}

// TicketRepository defines the interface for ticket data operations
type TicketRepository interface {
	// UpsertFromSession inserts the ticket if its id is new; it reports whether it did
	UpsertFromSession(ctx context.Context, ticket *models.Ticket) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	// FindOpen returns the successful tickets still in the current betting window
	FindOpen(ctx context.Context) ([]*models.Ticket, error)
	// ClaimOpen moves every open ticket into drawID with a PENDING payout and
	// returns the claimed tickets. A ticket is claimed by at most one draw.
	ClaimOpen(ctx context.Context, drawID string) ([]*models.Ticket, error)
	// SettleTicket applies the settlement to a ticket claimed by settlement.DrawID
	// whose payout is still PENDING. It returns ErrNotFound otherwise.
	SettleTicket(ctx context.Context, id string, settlement models.TicketSettlement) error
	FindByDrawID(ctx context.Context, drawID string) ([]*models.Ticket, error)
}

// DrawRepository defines the interface for draw data operations
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	Update(ctx context.Context, draw *models.Draw) error
	FindByID(ctx context.Context, id string) (*models.Draw, error)
	FindRecent(ctx context.Context, limit int) ([]*models.Draw, error)
}

// SessionRepository defines the interface for USSD session persistence
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	// BeginPayment saves the session unless the stored copy is collecting
	// a stake as of now. It reports whether the session was saved.
	BeginPayment(ctx context.Context, session *models.Session, now time.Time) (bool, error)
}

// PaymentRepository defines the interface for payment records
type PaymentRepository interface {
	// Upsert writes the payment keyed by its reference; createdAt is kept from the first write
	Upsert(ctx context.Context, payment *models.Payment) error
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
}

// AuditLogRepository defines the interface for the audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	FindRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// BlacklistRepository defines the interface for blacklist operations
type BlacklistRepository interface {
	IsBlacklisted(ctx context.Context, msisdn string) (bool, error)
	Add(ctx context.Context, entry *models.BlacklistEntry) error
	Remove(ctx context.Context, msisdn string) error
	FindAll(ctx context.Context) ([]*models.BlacklistEntry, error)
}

// Store groups every repository the engines depend on
type Store struct {
	Config    SystemConfigRepository
	Locks     LockRepository
	Tickets   TicketRepository
	Draws     DrawRepository
	Sessions  SessionRepository
	Payments  PaymentRepository
	AuditLogs AuditLogRepository
	Blacklist BlacklistRepository
}
