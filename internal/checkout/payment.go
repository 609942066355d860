package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest is what a processor needs to settle an order.
type ChargeRequest struct {
	SessionID string
	Method    enums.PaymentMethod
	Amount    decimal.Decimal
	Card      *CardDetails
	UPI       *UPIDetails
}

// ChargeResult is the processor verdict.
type ChargeResult struct {
	Status        enums.PaymentStatus
	TransactionID string
	Reason        string
}

// PaymentProcessor settles checkout payments.
type PaymentProcessor interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

const defaultPaymentDelay = 1500 * time.Millisecond

// SimulatedProcessor waits for Delay and approves every charge.
type SimulatedProcessor struct {
	Delay time.Duration
}

func NewSimulatedProcessor(delay time.Duration) *SimulatedProcessor {
	if delay < 0 {
		delay = defaultPaymentDelay
	}
	return &SimulatedProcessor{Delay: delay}
}

func (p *SimulatedProcessor) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ChargeResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	return ChargeResult{
		Status:        enums.PaymentStatusApproved,
		TransactionID: uuid.NewString(),
	}, nil
}
