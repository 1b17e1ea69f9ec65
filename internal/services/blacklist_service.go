package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
)

// Compile-time check to ensure BlacklistServiceImpl implements BlacklistService
var _ BlacklistService = (*BlacklistServiceImpl)(nil)

// BlacklistServiceImpl manages barred numbers in local format
type BlacklistServiceImpl struct {
	repo  repositories.BlacklistRepository
	audit AuditService
}

// NewBlacklistService creates a new BlacklistServiceImpl
func NewBlacklistService(repo repositories.BlacklistRepository, audit AuditService) *BlacklistServiceImpl {
	return &BlacklistServiceImpl{repo: repo, audit: audit}
}

// Add bars a number from staking
func (s *BlacklistServiceImpl) Add(ctx context.Context, entry models.BlacklistEntry) error {
	entry.MSISDN = utils.LocalMSISDN(strings.TrimSpace(entry.MSISDN))
	if entry.MSISDN == "" {
		return fmt.Errorf("%w: msisdn is required", ErrValidation)
	}
	if err := s.repo.Add(ctx, &entry); err != nil {
		return fmt.Errorf("blacklist %s: %w", utils.MaskMsisdn(entry.MSISDN), err)
	}
	s.audit.Record(ctx, models.AuditBlacklistUpdated, entry.AddedBy,
		fmt.Sprintf("Blacklisted %s: %s", utils.MaskMsisdn(entry.MSISDN), entry.Reason))
	return nil
}

// Remove lifts a bar
func (s *BlacklistServiceImpl) Remove(ctx context.Context, msisdn, actor string) error {
	msisdn = utils.LocalMSISDN(strings.TrimSpace(msisdn))
	if err := s.repo.Remove(ctx, msisdn); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.audit.Record(ctx, models.AuditBlacklistUpdated, actor, fmt.Sprintf("Removed %s from blacklist", utils.MaskMsisdn(msisdn)))
	return nil
}

// List returns every barred number
func (s *BlacklistServiceImpl) List(ctx context.Context) ([]*models.BlacklistEntry, error) {
	return s.repo.FindAll(ctx)
}
