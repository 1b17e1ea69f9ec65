package services

import (
	"context"
	"testing"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewBlacklistService(store.Blacklist, NewAuditService(store.AuditLogs))

	require.NoError(t, svc.Add(ctx, models.BlacklistEntry{MSISDN: "+233241234567", Reason: "fraud", AddedBy: "ops"}))

	blocked, err := store.Blacklist.IsBlacklisted(ctx, "0241234567")
	require.NoError(t, err)
	assert.True(t, blocked)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0241234567", entries[0].MSISDN)

	require.NoError(t, svc.Remove(ctx, "233241234567", "ops"))
	assert.ErrorIs(t, svc.Remove(ctx, "0241234567", "ops"), ErrNotFound)

	logs, err := store.AuditLogs.FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, models.AuditBlacklistUpdated, l.Action)
		assert.NotContains(t, l.Details, "1234567")
	}
}

func TestBlacklistService_RequiresNumber(t *testing.T) {
	store := memory.NewStore()
	svc := NewBlacklistService(store.Blacklist, NewAuditService(store.AuditLogs))

	assert.ErrorIs(t, svc.Add(context.Background(), models.BlacklistEntry{MSISDN: "  "}), ErrValidation)
}
