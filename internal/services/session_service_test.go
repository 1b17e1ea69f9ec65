package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/ArowuTest/homeradio-cashout/pkg/momo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionService(store *repositories.Store, gw momo.Gateway) *SessionServiceImpl {
	return NewSessionService(store, gw, NewAuditService(store.AuditLogs), SessionSettings{
		Menu:              testMenu,
		SessionTTL:        5 * time.Minute,
		CollectionTimeout: time.Second,
	})
}

func dial(svc *SessionServiceImpl, sessionID, text string) *USSDReply {
	return svc.HandleRequest(context.Background(), USSDRequest{
		SessionID: sessionID,
		MSISDN:    "233241234567",
		UserID:    "user-1",
		Text:      text,
	})
}

func TestWalkMenu(t *testing.T) {
	testCases := []struct {
		name  string
		steps []string
		want  models.SessionStep
		trail []models.SessionStep
	}{
		{"empty", nil, models.StepWelcome, []models.SessionStep{models.StepWelcome}},
		{"play", []string{"1"}, models.StepConfirm, []models.SessionStep{models.StepWelcome, models.StepConfirm}},
		{"exit", []string{"2"}, models.StepCancelled, []models.SessionStep{models.StepWelcome, models.StepCancelled}},
		{"bad first key", []string{"9"}, models.StepInvalid, []models.SessionStep{models.StepWelcome, models.StepInvalid}},
		{"confirm", []string{"1", "1"}, models.StepProcessingPayment, []models.SessionStep{models.StepWelcome, models.StepConfirm, models.StepProcessingPayment}},
		{"cancel at confirm", []string{"1", "2"}, models.StepCancelled, []models.SessionStep{models.StepWelcome, models.StepConfirm, models.StepCancelled}},
		{"bad confirm", []string{"1", "x"}, models.StepInvalidConfirm, []models.SessionStep{models.StepWelcome, models.StepConfirm, models.StepInvalidConfirm}},
		{"extra keys ignored", []string{"2", "1", "1"}, models.StepCancelled, []models.SessionStep{models.StepWelcome, models.StepCancelled}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			step, trail := walkMenu(tc.steps)
			assert.Equal(t, tc.want, step)
			assert.Equal(t, tc.trail, trail)
		})
	}
}

func TestHandleRequest_Welcome(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))

	reply := dial(svc, "s-1", "")
	assert.True(t, reply.ContinueSession)
	assert.Equal(t, "Welcome to Home Radio Cash Out\n1. Play & Win (GHS 10)\n2. Exit", reply.Message)
	assert.Equal(t, models.StepWelcome, reply.Step)

	session, err := store.Sessions.FindByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, models.PaymentNotStarted, session.PaymentStatus)
}

func TestHandleRequest_ShortcodeFormsAreEquivalent(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))

	for i, text := range []string{"1", "*789#1", " *789# 1 ", "＊789＃1", "*928*301#*1"} {
		reply := dial(svc, "eq-"+string(rune('a'+i)), text)
		assert.Equal(t, models.StepConfirm, reply.Step, "text %q", text)
		assert.True(t, reply.ContinueSession)
		assert.Equal(t, "Confirm stake of GHS 10?\n1. Confirm\n2. Cancel", reply.Message)
	}
}

func TestHandleRequest_PurchaseCompletes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.MatchedBy(func(req momo.PaymentRequest) bool {
		return req.Phone == "233241234567" && req.Amount == 10 && req.Provider == utils.ProviderMTN
	})).Return(success("TXN-1"), nil).Once()
	svc := newSessionService(store, gw)

	reply := dial(svc, "buy-1", "*789#1*1")

	ticketID := utils.DeriveRef("TKT", "buy-1")
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "Success! Your Home Radio Cash Out ticket is active.\nTicket: "+ticketID, reply.Message)
	assert.Equal(t, []models.SessionStep{
		models.StepWelcome, models.StepConfirm, models.StepProcessingPayment, models.StepCompleted,
	}, reply.Trail)

	ticket, err := store.Tickets.FindByID(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, models.CurrentDrawID, ticket.DrawID)
	assert.Equal(t, 10.0, ticket.Stake)
	assert.Equal(t, models.TicketStatusSuccess, ticket.Status)

	cfg, err := store.Config.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5010.0, cfg.CurrentJackpot)

	payment, err := store.Payments.FindByReference(ctx, utils.DeriveRef("PAY", "buy-1"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.Equal(t, models.PaymentCollection, payment.Direction)

	session, err := store.Sessions.FindByID(ctx, "buy-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	assert.Equal(t, models.TicketCreated, session.TicketStatus)
	gw.AssertExpectations(t)
}

func TestHandleRequest_ReplayDoesNotChargeTwice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.Anything).Return(success("TXN-1"), nil).Once()
	svc := newSessionService(store, gw)

	first := dial(svc, "dup-1", "1*1")
	second := dial(svc, "dup-1", "1*1")

	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.ContinueSession, second.ContinueSession)
	assert.True(t, second.Replayed)
	gw.AssertNumberOfCalls(t, "RequestPayment", 1)

	open, err := store.Tickets.FindOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	cfg, err := store.Config.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5010.0, cfg.CurrentJackpot)
}

func TestHandleRequest_ReusesRecordedCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	gw := new(MockGateway)
	svc := newSessionService(store, gw)

	// a previous attempt collected the stake but stopped before the ticket write
	require.NoError(t, store.Payments.Upsert(ctx, &models.Payment{
		Reference: utils.DeriveRef("PAY", "crash-1"),
		Direction: models.PaymentCollection,
		SessionID: "crash-1",
		Amount:    10,
		Status:    models.PaymentStatusSuccess,
	}))

	reply := dial(svc, "crash-1", "1*1")
	assert.Equal(t, models.StepCompleted, reply.Step)
	gw.AssertNotCalled(t, "RequestPayment", mock.Anything, mock.Anything)
}

func TestHandleRequest_RetryDuringCollectionWaits(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(success("TXN-1"), nil).Once()
	svc := newSessionService(newTestStore(t, 5000), gw)
	svc.settings.CollectionTimeout = 5 * time.Second

	var wg sync.WaitGroup
	var first *USSDReply
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = dial(svc, "inflight-1", "1*1")
	}()

	<-entered
	retried := dial(svc, "inflight-1", "1*1")
	assert.False(t, retried.ContinueSession)
	assert.Equal(t, models.StepProcessingPayment, retried.Step)
	assert.Contains(t, retried.Message, "being processed")

	close(release)
	wg.Wait()
	assert.Equal(t, models.StepCompleted, first.Step)

	replayed := dial(svc, "inflight-1", "1*1")
	assert.True(t, replayed.Replayed)
	assert.Equal(t, first.Message, replayed.Message)
	gw.AssertNumberOfCalls(t, "RequestPayment", 1)
}

func TestHandleRequest_StaleCollectionIsRetried(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	now := time.Now()
	require.NoError(t, store.Sessions.Save(ctx, &models.Session{
		ID:              "stale-1",
		MSISDN:          "233241234567",
		Step:            models.StepProcessingPayment,
		Status:          models.SessionStatusActive,
		StakeAmount:     10,
		PaymentStatus:   models.PaymentInitiated,
		PaymentRef:      utils.DeriveRef("PAY", "stale-1"),
		CollectingUntil: now.Add(-time.Second),
		ExpiresAt:       now.Add(time.Minute),
	}))

	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.Anything).Return(success("TXN-2"), nil).Once()
	svc := newSessionService(store, gw)

	reply := dial(svc, "stale-1", "1*1")
	assert.Equal(t, models.StepCompleted, reply.Step)
	gw.AssertExpectations(t)
}

func TestHandleRequest_Cancellation(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))

	exit := dial(svc, "c-1", "2")
	assert.False(t, exit.ContinueSession)
	assert.Equal(t, "Thank you for using Home Radio Cash Out.", exit.Message)

	cancelled := dial(svc, "c-2", "1*2")
	assert.False(t, cancelled.ContinueSession)
	assert.Equal(t, "Transaction cancelled.", cancelled.Message)

	session, err := store.Sessions.FindByID(context.Background(), "c-2")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, session.Status)
}

func TestHandleRequest_InvalidInput(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))

	reply := dial(svc, "i-1", "7")
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "Invalid choice. Please dial again and choose 1 or 2.", reply.Message)

	reply = dial(svc, "i-2", "1*5")
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "Invalid confirmation option. Please dial again.", reply.Message)
}

func TestHandleRequest_MissingFields(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))

	reply := svc.HandleRequest(context.Background(), USSDRequest{MSISDN: "233241234567", Text: "1"})
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "Invalid request. Please dial again.", reply.Message)

	_, err := store.Sessions.FindByID(context.Background(), "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestHandleRequest_PaymentDeclined(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.Anything).
		Return(&momo.PaymentResult{Success: false, Message: "insufficient funds"}, nil).Once()
	svc := newSessionService(store, gw)

	reply := dial(svc, "f-1", "1*1")
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "MoMo transaction failed. Please try again.", reply.Message)
	assert.Equal(t, models.StepPaymentFailed, reply.Step)

	open, err := store.Tickets.FindOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	cfg, err := store.Config.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, cfg.CurrentJackpot)

	logs, err := store.AuditLogs.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditPaymentFailed, logs[0].Action)

	// the failure is terminal and replayed, not retried
	again := dial(svc, "f-1", "1*1")
	assert.True(t, again.Replayed)
	gw.AssertNumberOfCalls(t, "RequestPayment", 1)
}

func TestHandleRequest_PaymentTimeout(t *testing.T) {
	store := newTestStore(t, 5000)
	gw := new(MockGateway)
	gw.On("RequestPayment", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded).Once()
	svc := newSessionService(store, gw)

	reply := dial(svc, "t-1", "1*1")
	assert.Equal(t, models.StepPaymentFailed, reply.Step)

	payment, err := store.Payments.FindByReference(context.Background(), utils.DeriveRef("PAY", "t-1"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.NotEmpty(t, payment.Error)
}

func TestHandleRequest_StoreFailureIsBusy(t *testing.T) {
	store := newTestStore(t, 5000)
	store.Sessions = failingSessions{store.Sessions}
	svc := newSessionService(store, new(MockGateway))

	reply := dial(svc, "b-1", "")
	assert.False(t, reply.ContinueSession)
	assert.Equal(t, "System busy. Please try again later.", reply.Message)
}

func TestHandleRequest_Blacklisted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	require.NoError(t, store.Blacklist.Add(ctx, &models.BlacklistEntry{MSISDN: "0241234567", Reason: "chargebacks"}))
	gw := new(MockGateway)
	svc := newSessionService(store, gw)

	reply := dial(svc, "bl-1", "1*1")
	assert.False(t, reply.ContinueSession)
	assert.Contains(t, reply.Message, "cannot play")
	gw.AssertNotCalled(t, "RequestPayment", mock.Anything, mock.Anything)
}

func TestHandleRequest_ExpiredSessionStartsOver(t *testing.T) {
	store := newTestStore(t, 5000)
	svc := newSessionService(store, new(MockGateway))
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	first := dial(svc, "e-1", "1")
	require.Equal(t, models.StepConfirm, first.Step)

	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	reply := dial(svc, "e-1", "")
	assert.Equal(t, models.StepWelcome, reply.Step)

	session, err := store.Sessions.FindByID(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, start.Add(10*time.Minute), session.CreatedAt)
}

func TestHandleRequest_StakeOutsideBounds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 5000)
	minStake := 20.0
	maxStake := 50.0
	_, err := store.Config.Merge(ctx, map[string]interface{}{"minStake": minStake, "maxStake": maxStake}, "test")
	require.NoError(t, err)
	gw := new(MockGateway)
	svc := newSessionService(store, gw)

	reply := dial(svc, "oob-1", "1*1")
	assert.Equal(t, "System busy. Please try again later.", reply.Message)
	gw.AssertNotCalled(t, "RequestPayment", mock.Anything, mock.Anything)
}
