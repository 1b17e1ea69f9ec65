package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/metrics"
	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/ArowuTest/homeradio-cashout/pkg/momo"
	"golang.org/x/exp/slog"
)

// USSDRequest is one normalised gateway callback
type USSDRequest struct {
	SessionID string
	MSISDN    string
	UserID    string
	Text      string
}

// USSDReply is the answer returned to the gateway
type USSDReply struct {
	SessionID       string
	UserID          string
	MSISDN          string
	ContinueSession bool
	Message         string
	Step            models.SessionStep
	Trail           []models.SessionStep
	Replayed        bool
}

// SessionSettings holds the fixed parameters of the dial menu
type SessionSettings struct {
	Menu              Menu
	SessionTTL        time.Duration
	CollectionTimeout time.Duration
}

// Compile-time check to ensure SessionServiceImpl implements SessionService
var _ SessionService = (*SessionServiceImpl)(nil)

// SessionServiceImpl is the USSD session state machine
type SessionServiceImpl struct {
	store    *repositories.Store
	payments momo.Gateway
	audit    AuditService
	settings SessionSettings
	now      func() time.Time
}

// NewSessionService creates a new SessionServiceImpl
func NewSessionService(store *repositories.Store, payments momo.Gateway, audit AuditService, settings SessionSettings) *SessionServiceImpl {
	return &SessionServiceImpl{
		store:    store,
		payments: payments,
		audit:    audit,
		settings: settings,
		now:      time.Now,
	}
}

// sessionOutcome is what one request did to the session
type sessionOutcome struct {
	text     string
	step     models.SessionStep
	trail    []models.SessionStep
	replayed bool
}

// HandleRequest processes one callback and always produces a reply
func (s *SessionServiceImpl) HandleRequest(ctx context.Context, req USSDRequest) (reply *USSDReply) {
	reply = &USSDReply{SessionID: req.SessionID, UserID: req.UserID, MSISDN: req.MSISDN}
	if reply.UserID == "" {
		reply.UserID = req.MSISDN
	}

	finish := func(out sessionOutcome) {
		reply.ContinueSession, reply.Message = utils.ParseUSSDResponse(out.text)
		reply.Step = out.step
		reply.Trail = out.trail
		reply.Replayed = out.replayed
		metrics.USSDResponses.WithLabelValues(string(out.step)).Inc()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("USSD request panicked", "sessionId", req.SessionID, "panic", r)
			finish(sessionOutcome{text: s.settings.Menu.Busy(), step: "ERROR"})
		}
	}()

	out, err := s.handle(ctx, req)
	if err != nil {
		slog.Error("USSD request failed", "error", err, "sessionId", req.SessionID, "msisdn", utils.MaskMsisdn(req.MSISDN))
		out = sessionOutcome{text: s.settings.Menu.Busy(), step: "ERROR"}
	}
	finish(out)

	slog.Info("USSD request",
		"sessionId", req.SessionID,
		"msisdn", utils.MaskMsisdn(req.MSISDN),
		"step", reply.Step,
		"continue", reply.ContinueSession,
		"replayed", reply.Replayed,
	)
	return reply
}

func (s *SessionServiceImpl) handle(ctx context.Context, req USSDRequest) (sessionOutcome, error) {
	menu := s.settings.Menu
	if req.SessionID == "" || req.MSISDN == "" {
		return sessionOutcome{text: menu.BadRequest(), step: models.StepInvalid}, nil
	}

	session, err := s.store.Sessions.FindByID(ctx, req.SessionID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return sessionOutcome{}, fmt.Errorf("load session: %w", err)
	}
	now := s.now()

	if session != nil && session.IsTerminal() && session.LastResponse != "" {
		metrics.USSDReplays.Inc()
		return sessionOutcome{text: session.LastResponse, step: session.Step, trail: session.Trail, replayed: true}, nil
	}
	if session != nil && now.After(session.ExpiresAt) {
		slog.Info("USSD session expired, starting over", "sessionId", session.ID, "step", session.Step)
		session = nil
	}

	blocked, err := s.store.Blacklist.IsBlacklisted(ctx, utils.LocalMSISDN(req.MSISDN))
	if err != nil {
		return sessionOutcome{}, fmt.Errorf("check blacklist: %w", err)
	}
	if blocked {
		return sessionOutcome{text: menu.Blacklisted(), step: models.StepInvalid}, nil
	}

	if session == nil {
		session = &models.Session{
			ID:            req.SessionID,
			Step:          models.StepWelcome,
			Status:        models.SessionStatusActive,
			StakeAmount:   menu.Stake,
			PaymentStatus: models.PaymentNotStarted,
			TicketStatus:  models.TicketNotCreated,
			CreatedAt:     now,
		}
	}
	session.MSISDN = req.MSISDN
	session.UserID = req.UserID
	session.Steps = utils.ParseSteps(req.Text)

	step, trail := walkMenu(session.Steps)
	session.Step = step
	session.Trail = trail

	var text string
	switch step {
	case models.StepWelcome:
		text = menu.Welcome()
	case models.StepConfirm:
		text = menu.Confirm()
	case models.StepCancelled:
		session.Status = models.SessionStatusCancelled
		text = menu.Cancelled()
		if len(trail) >= 2 && trail[len(trail)-2] == models.StepWelcome {
			text = menu.Exit()
		}
	case models.StepInvalid:
		session.Status = models.SessionStatusFailed
		text = menu.InvalidChoice()
	case models.StepInvalidConfirm:
		session.Status = models.SessionStatusFailed
		text = menu.InvalidConfirm()
	case models.StepProcessingPayment:
		return s.purchase(ctx, session)
	}

	if err := s.save(ctx, session, text); err != nil {
		return sessionOutcome{}, err
	}
	return sessionOutcome{text: text, step: session.Step, trail: session.Trail}, nil
}

// walkMenu replays the keystrokes from WELCOME. Keystrokes after a terminal
// state are ignored.
func walkMenu(steps []string) (models.SessionStep, []models.SessionStep) {
	state := models.StepWelcome
	trail := []models.SessionStep{state}
	for _, key := range steps {
		switch state {
		case models.StepWelcome:
			switch key {
			case "1":
				state = models.StepConfirm
			case "2":
				state = models.StepCancelled
			default:
				state = models.StepInvalid
			}
		case models.StepConfirm:
			switch key {
			case "1":
				state = models.StepProcessingPayment
			case "2":
				state = models.StepCancelled
			default:
				state = models.StepInvalidConfirm
			}
		default:
			return state, trail
		}
		trail = append(trail, state)
	}
	return state, trail
}

// purchase collects the stake and writes the ticket. Both writes are keyed by
// references derived from the session id so a retried request lands on the
// same records.
func (s *SessionServiceImpl) purchase(ctx context.Context, session *models.Session) (sessionOutcome, error) {
	menu := s.settings.Menu

	cfg, err := s.store.Config.Get(ctx)
	if err != nil {
		return sessionOutcome{}, fmt.Errorf("load config: %w", err)
	}
	if session.StakeAmount < cfg.MinStake || session.StakeAmount > cfg.MaxStake {
		return sessionOutcome{}, fmt.Errorf("%w: stake %.2f outside [%.2f, %.2f]", ErrInvalidConfig, session.StakeAmount, cfg.MinStake, cfg.MaxStake)
	}

	// Only one request at a time may collect for a session; a gateway retry
	// arriving mid-collection is told to wait instead of charging again.
	now := s.now()
	session.PaymentStatus = models.PaymentInitiated
	session.PaymentRef = utils.DeriveRef("PAY", session.ID)
	session.CollectingUntil = now.Add(s.settings.CollectionTimeout)
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.settings.SessionTTL)
	started, err := s.store.Sessions.BeginPayment(ctx, session, now)
	if err != nil {
		return sessionOutcome{}, fmt.Errorf("save session: %w", err)
	}
	if !started {
		slog.Info("USSD collection already in flight", "sessionId", session.ID, "msisdn", utils.MaskMsisdn(session.MSISDN))
		return sessionOutcome{text: menu.PaymentPending(), step: models.StepProcessingPayment, trail: session.Trail}, nil
	}

	provider := utils.DetectProvider(session.MSISDN)
	payment, err := s.collect(ctx, session, provider)
	if err != nil {
		return sessionOutcome{}, err
	}

	if payment.Status != models.PaymentStatusSuccess {
		metrics.StakeCollections.WithLabelValues("failed").Inc()
		s.audit.Record(ctx, models.AuditPaymentFailed, session.MSISDN, fmt.Sprintf("Failed collection of %s from %s", menu.amount(session.StakeAmount), utils.MaskMsisdn(session.MSISDN)))

		session.Step = models.StepPaymentFailed
		session.Trail = append(session.Trail, models.StepPaymentFailed)
		session.Status = models.SessionStatusFailed
		session.PaymentStatus = models.PaymentFailed
		text := menu.PaymentFailed()
		if err := s.save(ctx, session, text); err != nil {
			return sessionOutcome{}, err
		}
		return sessionOutcome{text: text, step: session.Step, trail: session.Trail}, nil
	}
	metrics.StakeCollections.WithLabelValues("success").Inc()

	ticket := &models.Ticket{
		ID:           utils.DeriveRef("TKT", session.ID),
		Phone:        session.MSISDN,
		Stake:        session.StakeAmount,
		DrawID:       models.CurrentDrawID,
		Timestamp:    s.now(),
		Status:       models.TicketStatusSuccess,
		SessionID:    session.ID,
		Provider:     provider,
		PaymentRef:   payment.Reference,
		PayoutStatus: models.PayoutStatusNone,
	}
	created, err := s.store.Tickets.UpsertFromSession(ctx, ticket)
	if err != nil {
		return sessionOutcome{}, fmt.Errorf("write ticket: %w", err)
	}
	if created {
		if err := s.store.Config.IncrementJackpot(ctx, ticket.Stake); err != nil {
			return sessionOutcome{}, fmt.Errorf("increment jackpot: %w", err)
		}
		s.audit.Record(ctx, models.AuditStakeCollected, session.MSISDN, fmt.Sprintf("%s staked by %s, ticket %s", menu.amount(ticket.Stake), utils.MaskMsisdn(session.MSISDN), ticket.ID))
	}

	session.Step = models.StepCompleted
	session.Trail = append(session.Trail, models.StepCompleted)
	session.Status = models.SessionStatusCompleted
	session.PaymentStatus = models.PaymentSucceeded
	session.TicketStatus = models.TicketCreated
	session.TicketID = ticket.ID
	text := menu.Success(ticket.ID)
	if err := s.save(ctx, session, text); err != nil {
		return sessionOutcome{}, err
	}
	return sessionOutcome{text: text, step: session.Step, trail: session.Trail}, nil
}

// collect requests the stake unless a successful collection for this session
// is already on record. A timeout counts as a failed collection.
func (s *SessionServiceImpl) collect(ctx context.Context, session *models.Session, provider string) (*models.Payment, error) {
	existing, err := s.store.Payments.FindByReference(ctx, session.PaymentRef)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if existing != nil && existing.Status == models.PaymentStatusSuccess {
		return existing, nil
	}

	payment := &models.Payment{
		Reference: session.PaymentRef,
		Direction: models.PaymentCollection,
		SessionID: session.ID,
		Phone:     session.MSISDN,
		Amount:    session.StakeAmount,
		Provider:  provider,
		Status:    models.PaymentStatusFailed,
	}

	collectCtx, cancel := context.WithTimeout(ctx, s.settings.CollectionTimeout)
	res, err := s.payments.RequestPayment(collectCtx, momo.PaymentRequest{
		Phone:     session.MSISDN,
		Amount:    session.StakeAmount,
		Provider:  provider,
		Reference: session.PaymentRef,
	})
	cancel()

	switch {
	case err != nil:
		payment.Error = err.Error()
		slog.Warn("Stake collection failed", "error", err, "sessionId", session.ID, "msisdn", utils.MaskMsisdn(session.MSISDN))
	case !res.Success:
		payment.TransactionID = res.TransactionID
		payment.Error = res.Message
	default:
		payment.TransactionID = res.TransactionID
		payment.Status = models.PaymentStatusSuccess
		payment.TicketID = utils.DeriveRef("TKT", session.ID)
	}

	if err := s.store.Payments.Upsert(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return payment, nil
}

func (s *SessionServiceImpl) save(ctx context.Context, session *models.Session, response string) error {
	now := s.now()
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.settings.SessionTTL)
	if response != "" {
		session.LastResponse = response
	}
	if err := s.store.Sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
