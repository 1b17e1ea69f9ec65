package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/metrics"
	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/ArowuTest/homeradio-cashout/pkg/advisor"
	"github.com/ArowuTest/homeradio-cashout/pkg/momo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const drawLockName = "draw-settlement"

// RandomSource draws the per-ticket winning rolls
type RandomSource interface {
	Float64() float64
}

// lockedRand makes a math/rand source safe for concurrent draws
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewRandomSource returns a concurrency-safe source seeded from the clock
func NewRandomSource() RandomSource {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// DrawSettings holds the settlement parameters
type DrawSettings struct {
	WinProbability      float64
	JackpotFloor        float64
	Concurrency         int
	LockTTL             time.Duration
	SettleTimeout       time.Duration
	DisbursementTimeout time.Duration
	AdvisorTimeout      time.Duration
	FallbackScript      string
	Menu                Menu
}

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl is the draw settlement engine
type DrawServiceImpl struct {
	store    *repositories.Store
	payments momo.Gateway
	advisor  advisor.Advisor
	notifier *WinnerNotifier
	audit    AuditService
	rnd      RandomSource
	settings DrawSettings
	instance string
	now      func() time.Time
}

// NewDrawService creates a new DrawServiceImpl. The advisor is wrapped so that
// its failures never block a draw.
func NewDrawService(
	store *repositories.Store,
	payments momo.Gateway,
	adv advisor.Advisor,
	notifier *WinnerNotifier,
	audit AuditService,
	rnd RandomSource,
	settings DrawSettings,
) *DrawServiceImpl {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	if settings.LockTTL <= 0 {
		settings.LockTTL = 10 * time.Minute
	}
	if settings.SettleTimeout <= 0 {
		settings.SettleTimeout = 30 * time.Minute
	}
	return &DrawServiceImpl{
		store:    store,
		payments: payments,
		advisor: advisor.FailOpen{
			Next:                 adv,
			Timeout:              settings.AdvisorTimeout,
			FallbackAnnouncement: settings.FallbackScript,
		},
		notifier: notifier,
		audit:    audit,
		rnd:      rnd,
		settings: settings,
		instance: uuid.NewString(),
		now:      time.Now,
	}
}

// ticketResult is the settlement outcome of one ticket
type ticketResult struct {
	ticket       *models.Ticket
	winner       bool
	payoutStatus models.PayoutStatus
	settleErr    error
}

// ProcessScheduledDraws executes the draw if its time has come
func (s *DrawServiceImpl) ProcessScheduledDraws(ctx context.Context) (*models.Draw, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if s.now().Before(cfg.NextDrawTime) {
		return nil, nil
	}
	draw, err := s.ExecuteDraw(ctx, models.DrawTriggerScheduled)
	if errors.Is(err, ErrDrawInProgress) {
		slog.Debug("Scheduled draw skipped, settlement already running")
		return nil, nil
	}
	return draw, err
}

// ExecuteDraw closes the open betting window and settles it
func (s *DrawServiceImpl) ExecuteDraw(ctx context.Context, trigger string) (draw *models.Draw, err error) {
	started := time.Now()
	drawID, err := newDrawID()
	if err != nil {
		return nil, err
	}

	// Each invocation owns its own lease so concurrent calls in one process exclude each other too
	owner := s.instance + "/" + drawID
	if err := s.store.Locks.Acquire(ctx, drawLockName, owner, s.settings.LockTTL); err != nil {
		if errors.Is(err, repositories.ErrLockHeld) {
			metrics.DrawsTotal.WithLabelValues("skipped").Inc()
			slog.Warn("ExecuteDraw: settlement already in progress", "trigger", trigger)
			return nil, ErrDrawInProgress
		}
		return nil, fmt.Errorf("acquire draw lock: %w", err)
	}
	// Once the lease is held the draw no longer follows the caller's context;
	// a disconnect must not leave a pool paid but not rolled forward.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.SettleTimeout)
	defer cancel()
	stopRenewing := s.keepLease(ctx, owner, drawID)
	defer func() {
		stopRenewing()
		releaseCtx, cancelRelease := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancelRelease()
		if relErr := s.store.Locks.Release(releaseCtx, drawLockName, owner); relErr != nil {
			slog.Error("ExecuteDraw: failed to release draw lock", "error", relErr, "drawId", drawID)
		}
	}()

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	draw = &models.Draw{
		ID:            drawID,
		ScheduledTime: cfg.NextDrawTime,
		Status:        models.DrawStatusOngoing,
		Trigger:       trigger,
		Winners:       []string{},
	}
	s.logStep(draw, "Starting execution (trigger %s)", trigger)
	if err := s.store.Draws.Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("create draw: %w", err)
	}

	// Final status is written once, whatever happens below
	defer func() {
		if r := recover(); r != nil {
			draw.Status = models.DrawStatusFailed
			draw.ErrorMessage = fmt.Sprintf("panic during execution: %v", r)
			s.logStep(draw, "PANIC: %v", r)
			err = fmt.Errorf("draw %s panicked: %v", drawID, r)
		} else if err != nil {
			draw.Status = models.DrawStatusFailed
			draw.ErrorMessage = err.Error()
			s.logStep(draw, "ERROR: %s", err.Error())
		} else {
			draw.Status = models.DrawStatusCompleted
			s.logStep(draw, "Execution completed successfully")
		}
		draw.CompletedTime = s.now()

		updateCtx, cancelUpdate := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancelUpdate()
		if updateErr := s.store.Draws.Update(updateCtx, draw); updateErr != nil {
			slog.Error("ExecuteDraw: CRITICAL: failed to update final draw status", "error", updateErr, "drawId", drawID, "finalStatusAttempt", draw.Status)
			if err == nil {
				err = fmt.Errorf("persist completed draw: %w", updateErr)
			}
		}

		outcome := "completed"
		if draw.Status != models.DrawStatusCompleted {
			outcome = "failed"
		}
		metrics.DrawsTotal.WithLabelValues(outcome).Inc()
		metrics.DrawDuration.Observe(time.Since(started).Seconds())
	}()

	err = s.settle(ctx, draw, cfg)
	return draw, err
}

// keepLease renews the draw lock until the returned func is called
func (s *DrawServiceImpl) keepLease(ctx context.Context, owner, drawID string) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.settings.LockTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.store.Locks.Renew(ctx, drawLockName, owner, s.settings.LockTTL); err != nil && ctx.Err() == nil {
					slog.Error("ExecuteDraw: failed to renew draw lock", "error", err, "drawId", drawID)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *DrawServiceImpl) settle(ctx context.Context, draw *models.Draw, cfg *models.SystemConfig) error {
	menu := s.settings.Menu

	// Claimed tickets never return to the open window
	tickets, err := s.store.Tickets.ClaimOpen(ctx, draw.ID)
	if err != nil {
		return fmt.Errorf("claim open tickets: %w", err)
	}

	totalStakes := decimal.Zero
	for _, t := range tickets {
		totalStakes = totalStakes.Add(decimal.NewFromFloat(t.Stake))
	}
	jackpot := decimal.NewFromFloat(cfg.CurrentJackpot)
	pool := jackpot.Add(totalStakes)

	draw.TicketCount = len(tickets)
	draw.TotalStakes = totalStakes.InexactFloat64()
	draw.JackpotPool = pool.InexactFloat64()
	s.logStep(draw, "Pool: %d tickets, stakes %s, jackpot pool %s", len(tickets), totalStakes.StringFixed(2), pool.StringFixed(2))

	suspected, _ := s.advisor.DetectFraud(ctx, toStakes(tickets))
	if suspected {
		draw.FraudSuspected = true
		s.logStep(draw, "Fraud suspected in draw pool, proceeding")
		slog.Warn("ExecuteDraw: advisor flagged draw pool", "drawId", draw.ID, "tickets", len(tickets))
		s.audit.Record(ctx, models.AuditFraudAlert, "draw-engine",
			fmt.Sprintf("Suspicious betting patterns detected in draw %s pool. Proceeding with caution.", draw.ID))
	}

	winners := make(map[string]bool)
	for _, t := range tickets {
		if s.rnd.Float64() < s.settings.WinProbability {
			winners[t.ID] = true
			draw.Winners = append(draw.Winners, t.ID)
		}
	}

	payoutPool := computePayoutPool(pool, cfg)
	prize := decimal.Zero
	if len(winners) > 0 {
		prize = payoutPool.Div(decimal.NewFromInt(int64(len(winners)))).Round(2)
		draw.PayoutAmount = payoutPool.InexactFloat64()
	}
	draw.PrizePerWinner = prize.InexactFloat64()
	s.logStep(draw, "Selected %d winners, payout pool %s, prize per winner %s", len(winners), payoutPool.StringFixed(2), prize.StringFixed(2))

	results := s.settleTickets(ctx, draw.ID, tickets, winners, draw.PrizePerWinner)
	for _, r := range results {
		if r.winner && r.payoutStatus != models.PayoutStatusPaid {
			draw.FailedPayouts = append(draw.FailedPayouts, r.ticket.ID)
		}
		if r.settleErr != nil {
			draw.UnsettledTickets = append(draw.UnsettledTickets, r.ticket.ID)
		}
	}
	if len(draw.FailedPayouts) > 0 {
		s.logStep(draw, "%d payouts need reconciliation", len(draw.FailedPayouts))
	}
	if len(draw.UnsettledTickets) > 0 {
		s.logStep(draw, "%d tickets could not be settled and keep a PENDING payout", len(draw.UnsettledTickets))
	}

	draw.RadioScript, _ = s.advisor.GenerateAnnouncement(ctx, advisor.Announcement{
		DrawID:      draw.ID,
		Pool:        draw.JackpotPool,
		WinnerCount: len(winners),
		Prize:       draw.PrizePerWinner,
		Currency:    menu.Currency,
	})

	nextJackpot := pool
	if len(winners) > 0 {
		nextJackpot = decimal.NewFromFloat(s.settings.JackpotFloor)
	}
	// Applied as a delta so stakes collected while the draw ran are kept
	delta := nextJackpot.Sub(jackpot)
	nextDrawTime := s.now().Add(time.Duration(cfg.DrawIntervalHours) * time.Hour)

	updated, err := s.rollForward(ctx, delta.InexactFloat64(), nextDrawTime)
	if err != nil {
		return fmt.Errorf("roll config forward: %w", err)
	}
	draw.NextJackpot = updated.CurrentJackpot
	metrics.CurrentJackpot.Set(updated.CurrentJackpot)
	s.logStep(draw, "Next jackpot %.2f, next draw at %s", updated.CurrentJackpot, nextDrawTime.Format(time.RFC3339))

	s.audit.Record(ctx, models.AuditDrawFinalized, "draw-engine",
		fmt.Sprintf("Draw %s closed with pool %s. Fixed payout reset.", draw.ID, menu.amount(draw.JackpotPool)))
	slog.Info("Draw settled",
		"drawId", draw.ID,
		"tickets", len(tickets),
		"winners", len(winners),
		"pool", draw.JackpotPool,
		"payout", draw.PayoutAmount,
		"failedPayouts", len(draw.FailedPayouts),
	)
	return nil
}

// computePayoutPool applies the fixed override when set, else the percentage of the pool
func computePayoutPool(pool decimal.Decimal, cfg *models.SystemConfig) decimal.Decimal {
	if cfg.FixedPayoutAmount > 0 {
		return decimal.NewFromFloat(cfg.FixedPayoutAmount).Round(2)
	}
	return pool.Mul(decimal.NewFromFloat(cfg.PayoutPercentage)).Round(2)
}

// settleTickets pays winners and stamps every ticket with the draw id, in
// parallel. A failure is recorded on its ticket's result and never stops the others.
func (s *DrawServiceImpl) settleTickets(ctx context.Context, drawID string, tickets []*models.Ticket, winners map[string]bool, prize float64) []ticketResult {
	results := make([]ticketResult, len(tickets))
	var g errgroup.Group
	g.SetLimit(s.settings.Concurrency)

	for i, t := range tickets {
		i, t := i, t
		g.Go(func() error {
			results[i] = s.settleTicket(ctx, drawID, t, winners[t.ID], prize)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *DrawServiceImpl) settleTicket(ctx context.Context, drawID string, t *models.Ticket, winner bool, prize float64) (res ticketResult) {
	res = ticketResult{ticket: t, winner: winner, payoutStatus: models.PayoutStatusNone}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Ticket settlement panicked", "drawId", drawID, "ticketId", t.ID, "panic", r)
			res.settleErr = fmt.Errorf("panic: %v", r)
			if winner && res.payoutStatus == models.PayoutStatusNone {
				res.payoutStatus = models.PayoutStatusFailed
			}
		}
	}()

	settlement := models.TicketSettlement{
		DrawID:       drawID,
		PayoutStatus: models.PayoutStatusNone,
		SettledAt:    s.now(),
	}
	if winner {
		// The disbursement attempt always precedes the ticket write
		res.payoutStatus, settlement.PayoutRef = s.disburse(ctx, drawID, t, prize)
		settlement.IsWinner = true
		settlement.PrizeAmount = prize
		settlement.PayoutStatus = res.payoutStatus
	}

	res.settleErr = s.writeSettlement(ctx, t.ID, settlement)
	if res.settleErr != nil {
		slog.Error("Failed to settle ticket", "error", res.settleErr, "drawId", drawID, "ticketId", t.ID, "winner", winner)
	}

	if winner && res.payoutStatus == models.PayoutStatusPaid {
		s.notifier.NotifyWinner(ctx, t.Phone, drawID, prize)
	}
	return res
}

// writeSettlement retries transient store errors a few times. A ticket that
// still fails keeps its PENDING payout under this draw for reconciliation.
func (s *DrawServiceImpl) writeSettlement(ctx context.Context, ticketID string, settlement models.TicketSettlement) error {
	return retry(ctx, func() error {
		err := s.store.Tickets.SettleTicket(ctx, ticketID, settlement)
		if errors.Is(err, repositories.ErrNotFound) {
			return errPermanent{err}
		}
		return err
	})
}

// rollForward moves the jackpot and next draw time once the winners are paid
func (s *DrawServiceImpl) rollForward(ctx context.Context, delta float64, nextDrawTime time.Time) (*models.SystemConfig, error) {
	var updated *models.SystemConfig
	err := retry(ctx, func() error {
		var err error
		updated, err = s.store.Config.ApplySettlement(ctx, delta, nextDrawTime)
		if errors.Is(err, repositories.ErrNotFound) {
			return errPermanent{err}
		}
		return err
	})
	return updated, err
}

// errPermanent stops retry early
type errPermanent struct{ err error }

func (e errPermanent) Error() string { return e.err.Error() }
func (e errPermanent) Unwrap() error { return e.err }

// retry runs fn up to three times with a growing pause
func retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = fn()
		var perm errPermanent
		if errors.As(err, &perm) {
			return perm.err
		}
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return err
}

// disburse sends one prize. A timeout leaves the outcome unknown; the payment
// is recorded as pending and the ticket as UNCONFIRMED.
func (s *DrawServiceImpl) disburse(ctx context.Context, drawID string, t *models.Ticket, prize float64) (models.PayoutStatus, string) {
	ref := utils.DeriveRef("DSB", drawID, t.ID)
	provider := t.Provider
	if provider == "" {
		provider = utils.DetectProvider(t.Phone)
	}
	payment := &models.Payment{
		Reference: ref,
		Direction: models.PaymentDisbursement,
		DrawID:    drawID,
		TicketID:  t.ID,
		Phone:     t.Phone,
		Amount:    prize,
		Provider:  provider,
	}

	dctx, cancel := context.WithTimeout(ctx, s.settings.DisbursementTimeout)
	res, err := s.payments.DisburseWinnings(dctx, momo.DisbursementRequest{
		Phone:     t.Phone,
		Amount:    prize,
		Provider:  provider,
		Reference: ref,
	})
	cancel()

	var status models.PayoutStatus
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = models.PayoutStatusUnconfirmed
		payment.Status = models.PaymentStatusPending
		payment.Error = err.Error()
	case err != nil:
		status = models.PayoutStatusFailed
		payment.Status = models.PaymentStatusFailed
		payment.Error = err.Error()
	case !res.Success:
		status = models.PayoutStatusFailed
		payment.Status = models.PaymentStatusFailed
		payment.TransactionID = res.TransactionID
		payment.Error = res.Message
	default:
		status = models.PayoutStatusPaid
		payment.Status = models.PaymentStatusSuccess
		payment.TransactionID = res.TransactionID
	}
	metrics.Disbursements.WithLabelValues(string(status)).Inc()

	if upErr := s.store.Payments.Upsert(ctx, payment); upErr != nil {
		slog.Error("Failed to record disbursement", "error", upErr, "reference", ref)
	}

	amount := s.settings.Menu.amount(prize)
	if status == models.PayoutStatusPaid {
		s.audit.Record(ctx, models.AuditDisbursement, "draw-engine", fmt.Sprintf("Paid %s to %s for ticket %s", amount, utils.MaskMsisdn(t.Phone), t.ID))
	} else {
		slog.Warn("Disbursement not confirmed", "error", err, "status", status, "drawId", drawID, "ticketId", t.ID, "msisdn", utils.MaskMsisdn(t.Phone))
		s.audit.Record(ctx, models.AuditDisbursementFailed, "draw-engine", fmt.Sprintf("Payout of %s to %s for ticket %s is %s", amount, utils.MaskMsisdn(t.Phone), t.ID, status))
	}
	return status, ref
}

// GetDraw retrieves a draw by its ID
func (s *DrawServiceImpl) GetDraw(ctx context.Context, id string) (*models.Draw, error) {
	draw, err := s.store.Draws.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return draw, err
}

// ListDraws lists the latest draws
func (s *DrawServiceImpl) ListDraws(ctx context.Context, limit int) ([]*models.Draw, error) {
	return s.store.Draws.FindRecent(ctx, limit)
}

// GetDrawTickets lists the tickets settled into a draw
func (s *DrawServiceImpl) GetDrawTickets(ctx context.Context, id string) ([]*models.Ticket, error) {
	if _, err := s.GetDraw(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Tickets.FindByDrawID(ctx, id)
}

// JackpotStatus returns the public jackpot view
func (s *DrawServiceImpl) JackpotStatus(ctx context.Context) (*models.JackpotStatus, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	status := &models.JackpotStatus{
		CurrentAmount: cfg.CurrentJackpot,
		Currency:      s.settings.Menu.Currency,
		NextDrawDate:  cfg.NextDrawTime,
		LastUpdatedAt: cfg.UpdatedAt,
	}

	recent, err := s.store.Draws.FindRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("load recent draws: %w", err)
	}
	for _, d := range recent {
		if d.Status != models.DrawStatusCompleted {
			continue
		}
		status.LastDrawID = d.ID
		status.LastDrawDate = d.CompletedTime
		status.LastWinnerCount = len(d.Winners)
		status.LastWinAmount = d.PrizePerWinner
		break
	}
	return status, nil
}

func (s *DrawServiceImpl) loadConfig(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := s.store.Config.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (s *DrawServiceImpl) logStep(draw *models.Draw, format string, args ...interface{}) {
	draw.ExecutionLog = append(draw.ExecutionLog, fmt.Sprintf("%s: %s", s.now().Format(time.RFC3339), fmt.Sprintf(format, args...)))
}

// newDrawID returns a time-ordered unique id
func newDrawID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate draw id: %w", err)
	}
	return "CASH-" + id.String(), nil
}

func toStakes(tickets []*models.Ticket) []advisor.Stake {
	stakes := make([]advisor.Stake, len(tickets))
	for i, t := range tickets {
		stakes[i] = advisor.Stake{Phone: t.Phone, Amount: t.Stake, Time: t.Timestamp}
	}
	return stakes
}
