package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"golang.org/x/exp/slog"
)

// DrawScheduler polls for due draws at a fixed interval
type DrawScheduler struct {
	drawService services.DrawService
	interval    time.Duration
	timeout     time.Duration
	quit        chan struct{}
	once        sync.Once
	wg          sync.WaitGroup
}

// New creates a new scheduler. timeout bounds the due check and lock
// acquisition of a tick; a draw that starts runs under its own deadline.
func New(drawService services.DrawService, interval, timeout time.Duration) *DrawScheduler {
	return &DrawScheduler{
		drawService: drawService,
		interval:    interval,
		timeout:     timeout,
		quit:        make(chan struct{}),
	}
}

// Start launches the polling loop
func (s *DrawScheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.quit:
				return
			}
		}
	}()
	slog.Info("Draw scheduler started", "interval", s.interval)
}

// Stop stops polling and waits for a running draw to finish
func (s *DrawScheduler) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}

func (s *DrawScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	draw, err := s.drawService.ProcessScheduledDraws(ctx)
	if err != nil {
		slog.Error("Scheduled draw failed", "error", err)
		return
	}
	if draw != nil {
		slog.Info("Scheduled draw finished", "drawId", draw.ID, "status", draw.Status, "winners", len(draw.Winners))
	}
}
