package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Menu renders the subscriber-facing USSD texts
type Menu struct {
	ServiceName string
	Currency    string
	Stake       float64
}

func (m Menu) amount(v float64) string {
	return m.Currency + " " + decimal.NewFromFloat(v).Round(2).String()
}

func (m Menu) Welcome() string {
	return fmt.Sprintf("CON Welcome to %s\n1. Play & Win (%s)\n2. Exit", m.ServiceName, m.amount(m.Stake))
}

func (m Menu) Confirm() string {
	return fmt.Sprintf("CON Confirm stake of %s?\n1. Confirm\n2. Cancel", m.amount(m.Stake))
}

func (m Menu) Exit() string {
	return fmt.Sprintf("END Thank you for using %s.", m.ServiceName)
}

func (m Menu) InvalidChoice() string {
	return "END Invalid choice. Please dial again and choose 1 or 2."
}

func (m Menu) Cancelled() string {
	return "END Transaction cancelled."
}

func (m Menu) InvalidConfirm() string {
	return "END Invalid confirmation option. Please dial again."
}

func (m Menu) Success(ticketID string) string {
	return fmt.Sprintf("END Success! Your %s ticket is active.\nTicket: %s", m.ServiceName, ticketID)
}

func (m Menu) PaymentFailed() string {
	return "END MoMo transaction failed. Please try again."
}

func (m Menu) PaymentPending() string {
	return "END Your MoMo payment is being processed. Please approve the prompt on your phone."
}

func (m Menu) Blacklisted() string {
	return fmt.Sprintf("END This number cannot play %s. Please contact support.", m.ServiceName)
}

func (m Menu) BadRequest() string {
	return "END Invalid request. Please dial again."
}

func (m Menu) Busy() string {
	return "END System busy. Please try again later."
}

func (m Menu) WinnerSMS(drawID string, prize float64) string {
	return fmt.Sprintf("Congratulations! Your %s ticket won %s in draw %s. The prize has been sent to your MoMo wallet.",
		m.ServiceName, m.amount(prize), drawID)
}
