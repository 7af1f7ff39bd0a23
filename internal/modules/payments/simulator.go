// Package payments simulates the M-Pesa STK push used at checkout.
// There is no real gateway behind it: the push always succeeds after a
// configurable delay, which is all the storefront flow needs.
package payments

import (
	"context"
	"log/slog"
	"time"
)

type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

type PushResult struct {
	Status Status `json:"status"`
	Phone  string `json:"phone"`
	Amount int    `json:"amount"`
}

type Simulator struct {
	delay  time.Duration
	logger *slog.Logger
}

func NewSimulator(delay time.Duration, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{delay: delay, logger: logger}
}

// Push pretends to send an STK push to the customer's phone and waits
// out the configured delay. Cancelling the context aborts the wait and
// reports StatusError.
func (s *Simulator) Push(ctx context.Context, phone string, amount int) (PushResult, error) {
	s.logger.Info("stk_push_simulated",
		slog.String("phone", phone),
		slog.Int("amount", amount),
	)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return PushResult{Status: StatusError, Phone: phone, Amount: amount}, ctx.Err()
		}
	}
	return PushResult{Status: StatusSuccess, Phone: phone, Amount: amount}, nil
}
