package services

import (
	"context"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"golang.org/x/exp/slog"
)

// AuditServiceImpl writes audit entries on a best-effort basis
type AuditServiceImpl struct {
	repo repositories.AuditLogRepository
}

// NewAuditService creates a new AuditServiceImpl
func NewAuditService(repo repositories.AuditLogRepository) *AuditServiceImpl {
	return &AuditServiceImpl{repo: repo}
}

// Record appends an entry; a failed write is logged and otherwise ignored
func (s *AuditServiceImpl) Record(ctx context.Context, action models.AuditAction, actor, details string) {
	entry := &models.AuditLog{
		Action:    action,
		Actor:     actor,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "error", err, "action", action)
	}
}

// List returns the latest entries, newest first
func (s *AuditServiceImpl) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	return s.repo.FindRecent(ctx, limit)
}
