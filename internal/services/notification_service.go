package services

import (
	"context"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/ArowuTest/homeradio-cashout/pkg/smsgateway"
	"golang.org/x/exp/slog"
)

// WinnerNotifier tells paid winners about their prize by SMS
type WinnerNotifier struct {
	gateway smsgateway.Gateway
	menu    Menu
	timeout time.Duration
}

// NewWinnerNotifier creates a WinnerNotifier; a nil gateway disables notifications
func NewWinnerNotifier(gateway smsgateway.Gateway, menu Menu) *WinnerNotifier {
	return &WinnerNotifier{gateway: gateway, menu: menu, timeout: 10 * time.Second}
}

// NotifyWinner sends the prize SMS; failures are only logged
func (n *WinnerNotifier) NotifyWinner(ctx context.Context, msisdn, drawID string, prize float64) {
	if n == nil || n.gateway == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msgID, err := n.gateway.SendSMS(ctx, msisdn, n.menu.WinnerSMS(drawID, prize))
	if err != nil {
		slog.Warn("Failed to send winner SMS", "error", err, "msisdn", utils.MaskMsisdn(msisdn), "drawId", drawID)
		return
	}
	slog.Debug("Winner SMS sent", "messageId", msgID, "drawId", drawID)
}
