package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatedPaymentService stands in for a real gateway: it waits for a
// fixed delay and approves every well-formed request.
type SimulatedPaymentService struct {
	delay  time.Duration
	logger *zap.Logger
}

func NewSimulatedPaymentService(delay time.Duration, logger *zap.Logger) *SimulatedPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedPaymentService{
		delay:  delay,
		logger: logger,
	}
}

func (s *SimulatedPaymentService) Authorize(ctx context.Context, req PaymentRequest) (*PaymentAuthorization, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("simulated payment: amount must be positive")
	}
	if req.Card != nil && strings.TrimSpace(req.Card.Number) == "" {
		return nil, ErrPaymentDeclined
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	auth := &PaymentAuthorization{
		ID:       "sim_" + uuid.New().String(),
		Provider: "simulated",
		Status:   PaymentStatusAuthorized,
		Amount:   req.Amount,
	}
	s.logger.Info("simulated payment authorized",
		zap.String("reference", req.Reference),
		zap.String("authorizationId", auth.ID),
		zap.Float64("amount", req.Amount))
	return auth, nil
}

func (s *SimulatedPaymentService) Capture(ctx context.Context, authorizationID string) error {
	s.logger.Info("simulated payment captured", zap.String("authorizationId", authorizationID))
	return nil
}

func (s *SimulatedPaymentService) Void(ctx context.Context, authorizationID string) error {
	s.logger.Info("simulated payment voided", zap.String("authorizationId", authorizationID))
	return nil
}
