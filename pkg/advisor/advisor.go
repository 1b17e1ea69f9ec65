// Package advisor produces draw announcements and fraud verdicts for a batch
// of stakes.
package advisor

import (
	"context"
	"fmt"
	"time"
)

// Advisor is the narration and fraud capability consulted by the draw engine
type Advisor interface {
	GenerateAnnouncement(ctx context.Context, a Announcement) (string, error)
	DetectFraud(ctx context.Context, stakes []Stake) (bool, error)
}

// Announcement describes a settled draw
type Announcement struct {
	DrawID      string
	Pool        float64
	WinnerCount int
	Prize       float64
	Currency    string
}

// Stake is one entry of the batch screened for fraud
type Stake struct {
	Phone  string
	Amount float64
	Time   time.Time
}

// Static is the advisor used when no model is configured.
// It never reports fraud.
type Static struct {
	StationName string
	Shortcode   string
}

// GenerateAnnouncement returns a fixed-form announcement
func (s Static) GenerateAnnouncement(_ context.Context, a Announcement) (string, error) {
	if a.WinnerCount == 0 {
		return fmt.Sprintf("No winners in draw %s on %s. The %s %.2f jackpot rolls over. Dial %s to play!",
			a.DrawID, s.StationName, a.Currency, a.Pool, s.Shortcode), nil
	}
	return fmt.Sprintf("Draw %s on %s: %d lucky listeners each won %s %.2f, already sent to their MoMo wallets. Dial %s to be next!",
		a.DrawID, s.StationName, a.WinnerCount, a.Currency, a.Prize, s.Shortcode), nil
}

// DetectFraud always reports an organic batch
func (Static) DetectFraud(context.Context, []Stake) (bool, error) {
	return false, nil
}
