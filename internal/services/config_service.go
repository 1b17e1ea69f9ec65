package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/metrics"
	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure ConfigServiceImpl implements ConfigService
var _ ConfigService = (*ConfigServiceImpl)(nil)

// ConfigServiceImpl manages the SystemConfig singleton
type ConfigServiceImpl struct {
	repo     repositories.SystemConfigRepository
	audit    AuditService
	validate *validator.Validate
	now      func() time.Time
}

// NewConfigService creates a new ConfigServiceImpl
func NewConfigService(repo repositories.SystemConfigRepository, audit AuditService) *ConfigServiceImpl {
	return &ConfigServiceImpl{
		repo:     repo,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Bootstrap writes the initial configuration unless one already exists, and
// returns whichever document is stored afterwards.
func (s *ConfigServiceImpl) Bootstrap(ctx context.Context, initial models.SystemConfig) (*models.SystemConfig, error) {
	if err := s.validate.Struct(initial); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	initial.ID = models.SystemConfigID
	if initial.NextDrawTime.IsZero() {
		initial.NextDrawTime = s.now().Add(time.Duration(initial.DrawIntervalHours) * time.Hour)
	}
	initial.UpdatedBy = "bootstrap"

	created, err := s.repo.Initialize(ctx, &initial)
	if err != nil {
		return nil, fmt.Errorf("initialize config: %w", err)
	}
	if created {
		slog.Info("System config initialised", "jackpot", initial.CurrentJackpot, "nextDrawTime", initial.NextDrawTime)
	}

	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CurrentJackpot.Set(cfg.CurrentJackpot)
	return cfg, nil
}

// Get returns the current configuration
func (s *ConfigServiceImpl) Get(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	return cfg, err
}

// Update merges an operator's change into the stored configuration. The
// jackpot itself is never writable here.
func (s *ConfigServiceImpl) Update(ctx context.Context, update models.SystemConfigUpdate, actor string) (*models.SystemConfig, error) {
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	minStake, maxStake := current.MinStake, current.MaxStake
	if update.MinStake != nil {
		minStake = *update.MinStake
	}
	if update.MaxStake != nil {
		maxStake = *update.MaxStake
	}
	if minStake > maxStake {
		return nil, fmt.Errorf("%w: minStake %.2f exceeds maxStake %.2f", ErrInvalidConfig, minStake, maxStake)
	}

	cfg, err := s.repo.Merge(ctx, fields, actor)
	if err != nil {
		return nil, fmt.Errorf("update config: %w", err)
	}

	s.audit.Record(ctx, models.AuditConfigUpdated, actor, describeFields(fields))
	slog.Info("System config updated", "actor", actor, "fields", len(fields))
	return cfg, nil
}

func describeFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return "Updated " + strings.Join(parts, ", ")
}
