// Package memory is an in-process implementation of the repositories with the
// same merge, increment and conditional-write semantics as the MongoDB store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/google/uuid"
)

type lease struct {
	owner     string
	expiresAt time.Time
}

// DB holds every collection behind one mutex
type DB struct {
	mu        sync.Mutex
	config    *models.SystemConfig
	locks     map[string]lease
	tickets   map[string]models.Ticket
	draws     map[string]models.Draw
	sessions  map[string]models.Session
	payments  map[string]models.Payment
	auditLogs []models.AuditLog
	blacklist map[string]models.BlacklistEntry
}

// NewDB creates an empty in-memory database
func NewDB() *DB {
	return &DB{
		locks:     map[string]lease{},
		tickets:   map[string]models.Ticket{},
		draws:     map[string]models.Draw{},
		sessions:  map[string]models.Session{},
		payments:  map[string]models.Payment{},
		blacklist: map[string]models.BlacklistEntry{},
	}
}

// NewStore returns a Store whose repositories share one in-memory database
func NewStore() *repositories.Store {
	return NewDB().Store()
}

// Store exposes db through the repository interfaces
func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Config:    configRepo{db},
		Locks:     lockRepo{db},
		Tickets:   ticketRepo{db},
		Draws:     drawRepo{db},
		Sessions:  sessionRepo{db},
		Payments:  paymentRepo{db},
		AuditLogs: auditRepo{db},
		Blacklist: blacklistRepo{db},
	}
}

type configRepo struct{ db *DB }

func (r configRepo) Get(_ context.Context) (*models.SystemConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.config == nil {
		return nil, repositories.ErrNotFound
	}
	cfg := *r.db.config
	return &cfg, nil
}

func (r configRepo) Initialize(_ context.Context, cfg *models.SystemConfig) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.config != nil {
		return false, nil
	}
	c := *cfg
	c.ID = models.SystemConfigID
	c.UpdatedAt = time.Now()
	r.db.config = &c
	return true, nil
}

func (r configRepo) Merge(_ context.Context, fields map[string]interface{}, updatedBy string) (*models.SystemConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.config == nil {
		return nil, repositories.ErrNotFound
	}
	c := r.db.config
	for k, v := range fields {
		switch k {
		case "payoutPercentage":
			c.PayoutPercentage = v.(float64)
		case "fixedPayoutAmount":
			c.FixedPayoutAmount = v.(float64)
		case "minStake":
			c.MinStake = v.(float64)
		case "maxStake":
			c.MaxStake = v.(float64)
		case "drawIntervalHours":
			c.DrawIntervalHours = v.(int)
		case "nextDrawTime":
			c.NextDrawTime = v.(time.Time)
		case "currentJackpot":
			c.CurrentJackpot = v.(float64)
		}
	}
	c.UpdatedAt = time.Now()
	c.UpdatedBy = updatedBy
	out := *c
	return &out, nil
}

func (r configRepo) IncrementJackpot(_ context.Context, delta float64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.config == nil {
		return repositories.ErrNotFound
	}
	r.db.config.CurrentJackpot += delta
	r.db.config.UpdatedAt = time.Now()
	return nil
}

func (r configRepo) ApplySettlement(_ context.Context, jackpotDelta float64, nextDrawTime time.Time) (*models.SystemConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.config == nil {
		return nil, repositories.ErrNotFound
	}
	c := r.db.config
	c.CurrentJackpot += jackpotDelta
	if c.CurrentJackpot < 0 {
		c.CurrentJackpot = 0
	}
	c.NextDrawTime = nextDrawTime
	c.FixedPayoutAmount = 0
	c.UpdatedAt = time.Now()
	c.UpdatedBy = "draw-engine"
	out := *c
	return &out, nil
}

type lockRepo struct{ db *DB }

func (r lockRepo) Acquire(_ context.Context, name, owner string, ttl time.Duration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	if l, ok := r.db.locks[name]; ok && l.owner != owner && l.expiresAt.After(now) {
		return repositories.ErrLockHeld
	}
	r.db.locks[name] = lease{owner: owner, expiresAt: now.Add(ttl)}
	return nil
}

func (r lockRepo) Renew(_ context.Context, name, owner string, ttl time.Duration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.locks[name]
	if !ok || l.owner != owner {
		return repositories.ErrLockHeld
	}
	l.expiresAt = time.Now().Add(ttl)
	r.db.locks[name] = l
	return nil
}

func (r lockRepo) Release(_ context.Context, name, owner string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if l, ok := r.db.locks[name]; ok && l.owner == owner {
		delete(r.db.locks, name)
	}
	return nil
}

type ticketRepo struct{ db *DB }

func (r ticketRepo) UpsertFromSession(_ context.Context, t *models.Ticket) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tickets[t.ID]; ok {
		return false, nil
	}
	r.db.tickets[t.ID] = *t
	return true, nil
}

func (r ticketRepo) FindByID(_ context.Context, id string) (*models.Ticket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tickets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r ticketRepo) FindOpen(_ context.Context) ([]*models.Ticket, error) {
	return r.filter(func(t models.Ticket) bool {
		return t.DrawID == models.CurrentDrawID && t.Status == models.TicketStatusSuccess
	}), nil
}

func (r ticketRepo) ClaimOpen(_ context.Context, drawID string) ([]*models.Ticket, error) {
	r.db.mu.Lock()
	for id, t := range r.db.tickets {
		if t.DrawID == models.CurrentDrawID && t.Status == models.TicketStatusSuccess {
			t.DrawID = drawID
			t.PayoutStatus = models.PayoutStatusPending
			r.db.tickets[id] = t
		}
	}
	r.db.mu.Unlock()
	return r.filter(func(t models.Ticket) bool { return t.DrawID == drawID }), nil
}

func (r ticketRepo) SettleTicket(_ context.Context, id string, s models.TicketSettlement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tickets[id]
	if !ok || t.DrawID != s.DrawID || t.PayoutStatus != models.PayoutStatusPending {
		return repositories.ErrNotFound
	}
	t.IsWinner = s.IsWinner
	t.PrizeAmount = s.PrizeAmount
	t.PayoutStatus = s.PayoutStatus
	t.PayoutRef = s.PayoutRef
	t.SettledAt = s.SettledAt
	r.db.tickets[id] = t
	return nil
}

func (r ticketRepo) FindByDrawID(_ context.Context, drawID string) ([]*models.Ticket, error) {
	return r.filter(func(t models.Ticket) bool { return t.DrawID == drawID }), nil
}

func (r ticketRepo) filter(match func(models.Ticket) bool) []*models.Ticket {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.Ticket{}
	for _, t := range r.db.tickets {
		if match(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

type drawRepo struct{ db *DB }

func (r drawRepo) Create(_ context.Context, d *models.Draw) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	r.db.draws[d.ID] = copyDraw(*d)
	return nil
}

func (r drawRepo) Update(_ context.Context, d *models.Draw) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.draws[d.ID]
	if !ok || existing.Status == models.DrawStatusCompleted {
		return repositories.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	r.db.draws[d.ID] = copyDraw(*d)
	return nil
}

func (r drawRepo) FindByID(_ context.Context, id string) (*models.Draw, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.draws[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	d = copyDraw(d)
	return &d, nil
}

func (r drawRepo) FindRecent(_ context.Context, limit int) ([]*models.Draw, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Draw, 0, len(r.db.draws))
	for _, d := range r.db.draws {
		d = copyDraw(d)
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyDraw(d models.Draw) models.Draw {
	d.Winners = append([]string(nil), d.Winners...)
	d.FailedPayouts = append([]string(nil), d.FailedPayouts...)
	d.UnsettledTickets = append([]string(nil), d.UnsettledTickets...)
	d.ExecutionLog = append([]string(nil), d.ExecutionLog...)
	return d
}

type sessionRepo struct{ db *DB }

func (r sessionRepo) FindByID(_ context.Context, id string) (*models.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	s.Steps = append([]string(nil), s.Steps...)
	s.Trail = append([]models.SessionStep(nil), s.Trail...)
	return &s, nil
}

func (r sessionRepo) Save(_ context.Context, s *models.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *s
	c.Steps = append([]string(nil), s.Steps...)
	c.Trail = append([]models.SessionStep(nil), s.Trail...)
	r.db.sessions[s.ID] = c
	return nil
}

func (r sessionRepo) BeginPayment(_ context.Context, s *models.Session, now time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if stored, ok := r.db.sessions[s.ID]; ok && stored.IsCollecting(now) {
		return false, nil
	}
	c := *s
	c.Steps = append([]string(nil), s.Steps...)
	c.Trail = append([]models.SessionStep(nil), s.Trail...)
	r.db.sessions[s.ID] = c
	return true, nil
}

type paymentRepo struct{ db *DB }

func (r paymentRepo) Upsert(_ context.Context, p *models.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	c := *p
	c.CreatedAt = now
	if existing, ok := r.db.payments[p.Reference]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	c.UpdatedAt = now
	r.db.payments[p.Reference] = c
	return nil
}

func (r paymentRepo) FindByReference(_ context.Context, reference string) (*models.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.payments[reference]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

type auditRepo struct{ db *DB }

func (r auditRepo) Create(_ context.Context, e *models.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	r.db.auditLogs = append(r.db.auditLogs, *e)
	return nil
}

func (r auditRepo) FindRecent(_ context.Context, limit int) ([]*models.AuditLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*models.AuditLog{}
	for i := len(r.db.auditLogs) - 1; i >= 0; i-- {
		e := r.db.auditLogs[i]
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type blacklistRepo struct{ db *DB }

func (r blacklistRepo) IsBlacklisted(_ context.Context, msisdn string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.blacklist[msisdn]
	return ok, nil
}

func (r blacklistRepo) Add(_ context.Context, e *models.BlacklistEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *e
	if existing, ok := r.db.blacklist[e.MSISDN]; ok {
		c.CreatedAt = existing.CreatedAt
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	r.db.blacklist[e.MSISDN] = c
	return nil
}

func (r blacklistRepo) Remove(_ context.Context, msisdn string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.blacklist[msisdn]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.db.blacklist, msisdn)
	return nil
}

func (r blacklistRepo) FindAll(_ context.Context) ([]*models.BlacklistEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.BlacklistEntry, 0, len(r.db.blacklist))
	for _, e := range r.db.blacklist {
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MSISDN < out[j].MSISDN })
	return out, nil
}
