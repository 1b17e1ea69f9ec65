package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories/memory"
	"github.com/ArowuTest/homeradio-cashout/pkg/momo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testMenu = Menu{ServiceName: "Home Radio Cash Out", Currency: "GHS", Stake: 10}

// MockGateway is a mock type for momo.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) RequestPayment(ctx context.Context, req momo.PaymentRequest) (*momo.PaymentResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*momo.PaymentResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) DisburseWinnings(ctx context.Context, req momo.DisbursementRequest) (*momo.PaymentResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*momo.PaymentResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// failingSessions breaks every session write
type failingSessions struct {
	repositories.SessionRepository
}

func (failingSessions) Save(context.Context, *models.Session) error {
	return errors.New("connection refused")
}

func newTestStore(t *testing.T, jackpot float64) *repositories.Store {
	t.Helper()
	store := memory.NewStore()
	created, err := store.Config.Initialize(context.Background(), &models.SystemConfig{
		PayoutPercentage:  0.7,
		MinStake:          1,
		MaxStake:          100,
		DrawIntervalHours: 6,
		NextDrawTime:      time.Now().Add(6 * time.Hour),
		CurrentJackpot:    jackpot,
	})
	require.NoError(t, err)
	require.True(t, created)
	return store
}

func seedTicket(t *testing.T, store *repositories.Store, id, phone string, stake float64) {
	t.Helper()
	_, err := store.Tickets.UpsertFromSession(context.Background(), &models.Ticket{
		ID:           id,
		Phone:        phone,
		Stake:        stake,
		DrawID:       models.CurrentDrawID,
		Timestamp:    time.Now(),
		Status:       models.TicketStatusSuccess,
		PayoutStatus: models.PayoutStatusNone,
	})
	require.NoError(t, err)
}

func success(txn string) *momo.PaymentResult {
	return &momo.PaymentResult{Success: true, TransactionID: txn}
}
