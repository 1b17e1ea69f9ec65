package services

import (
	"context"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
)

// SessionService runs the USSD conversation
type SessionService interface {
	// HandleRequest never fails; every problem becomes an END reply
	HandleRequest(ctx context.Context, req USSDRequest) *USSDReply
}

// DrawService settles the open betting window
type DrawService interface {
	// ExecuteDraw settles the open pool now; it returns ErrDrawInProgress when
	// another settlement is running
	ExecuteDraw(ctx context.Context, trigger string) (*models.Draw, error)
	// ProcessScheduledDraws runs a draw when the next draw time has passed.
	// It returns a nil draw when nothing was due.
	ProcessScheduledDraws(ctx context.Context) (*models.Draw, error)
	GetDraw(ctx context.Context, id string) (*models.Draw, error)
	ListDraws(ctx context.Context, limit int) ([]*models.Draw, error)
	GetDrawTickets(ctx context.Context, id string) ([]*models.Ticket, error)
	// JackpotStatus summarises the live jackpot and the last completed draw
	JackpotStatus(ctx context.Context) (*models.JackpotStatus, error)
}

// ConfigService manages the SystemConfig singleton
type ConfigService interface {
	Bootstrap(ctx context.Context, initial models.SystemConfig) (*models.SystemConfig, error)
	Get(ctx context.Context) (*models.SystemConfig, error)
	Update(ctx context.Context, update models.SystemConfigUpdate, actor string) (*models.SystemConfig, error)
}

// AuditService records and lists audit entries
type AuditService interface {
	Record(ctx context.Context, action models.AuditAction, actor, details string)
	List(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// BlacklistService manages the numbers barred from staking
type BlacklistService interface {
	Add(ctx context.Context, entry models.BlacklistEntry) error
	Remove(ctx context.Context, msisdn, actor string) error
	List(ctx context.Context) ([]*models.BlacklistEntry, error)
}

// AuthService exchanges operator API keys for bearer tokens
type AuthService interface {
	IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error)
}
