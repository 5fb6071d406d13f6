package gateway

import (
	"context"
	"errors"
)

type IntentStatus string

const (
	IntentAwaitingPayment IntentStatus = "awaiting_payment_method"
	IntentAwaitingAction  IntentStatus = "awaiting_next_action"
	IntentProcessing      IntentStatus = "processing"
	IntentSucceeded       IntentStatus = "succeeded"
	IntentFailed          IntentStatus = "failed"
)

type Payer struct {
	UserID int64
	Role   string
}

type Intent struct {
	ID          string
	CheckoutURL string
}

type PayoutRequest struct {
	Reference     string
	Amount        int64
	Method        string
	AccountNumber string
}

// Provider is the external checkout-intent service. Implementations must be
// safe for concurrent use.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, payer Payer) (Intent, error)
	// AttachMethod binds a payment method and returns the URL the payer
	// follows to confirm.
	AttachMethod(ctx context.Context, intentID, method string) (string, error)
	VerifyIntent(ctx context.Context, intentID string) (IntentStatus, error)
	Payout(ctx context.Context, req PayoutRequest) (string, error)
}

var ErrIntentNotFound = errors.New("payment intent not found")
