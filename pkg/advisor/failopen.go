package advisor

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

// FailOpen wraps an Advisor so that errors, panics and timeouts degrade to
// the fallback announcement and a "not fraud" verdict.
type FailOpen struct {
	Next                 Advisor
	Timeout              time.Duration
	FallbackAnnouncement string
}

// GenerateAnnouncement never returns an error
func (f FailOpen) GenerateAnnouncement(ctx context.Context, a Announcement) (text string, err error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Advisor announcement panicked, using fallback", "drawId", a.DrawID, "panic", r)
			text, err = f.FallbackAnnouncement, nil
		}
	}()

	text, err = f.Next.GenerateAnnouncement(ctx, a)
	if err != nil || text == "" {
		slog.Warn("Advisor announcement failed, using fallback", "drawId", a.DrawID, "error", err)
		return f.FallbackAnnouncement, nil
	}
	return text, nil
}

// DetectFraud never returns an error
func (f FailOpen) DetectFraud(ctx context.Context, stakes []Stake) (suspected bool, err error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Advisor fraud check panicked, assuming organic", "panic", r)
			suspected, err = false, nil
		}
	}()

	suspected, err = f.Next.DetectFraud(ctx, stakes)
	if err != nil {
		slog.Warn("Advisor fraud check failed, assuming organic", "stakes", len(stakes), "error", err)
		return false, nil
	}
	return suspected, nil
}

func (f FailOpen) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.Timeout)
}
