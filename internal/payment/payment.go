// Package payment issues payment intents and verifies payment confirmation
// webhooks. Stripe is the only gateway; the Issuer interface keeps the rest
// of the application independent of it.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Fixed prices in minor currency units.
const (
	AmountTemplate     int64 = 12000
	AmountConsultation int64 = 8900
)

// Purpose tags carried in intent metadata and echoed back by confirmations.
const (
	PurposeTemplate     = "template_website"
	PurposeConsultation = "consultation_fee"
	PurposeFinal        = "final_payment"
)

// Metadata keys written on every intent.
const (
	metaRequestID = "requestId"
	metaPurpose   = "type"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("payment: invalid webhook signature")

// IntentRequest describes the payment to authorize.
type IntentRequest struct {
	AmountMinor int64
	RequestID   uuid.UUID
	Purpose     string
}

// Intent is the issued payment handle. ClientSecret is what the browser
// needs to complete the payment.
type Intent struct {
	ID           string
	ClientSecret string
}

// Issuer creates payment intents.
type Issuer interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// Confirmation is a verified "payment succeeded" event. RequestID is kept
// as the raw metadata string; it may be missing or malformed. AmountMinor
// is what was actually charged.
type Confirmation struct {
	EventID         string
	PaymentIntentID string
	RequestID       string
	Purpose         string
	AmountMinor     int64
}
