package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeIssuer creates PaymentIntents through the Stripe API.
type StripeIssuer struct {
	api      *client.API
	currency string
}

// NewStripeIssuer returns an issuer using secretKey. Backends may be nil to
// use Stripe's defaults; tests pass backends pointed at a fake server.
func NewStripeIssuer(secretKey, currency string, backends *stripe.Backends) *StripeIssuer {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeIssuer{api: api, currency: currency}
}

// CreateIntent creates a PaymentIntent for req with automatic payment
// methods enabled. The request id and purpose go into metadata so the
// confirmation webhook can route the payment back to its record.
func (s *StripeIssuer) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(metaRequestID, req.RequestID.String())
	params.AddMetadata(metaPurpose, req.Purpose)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	slog.Info("payment intent created",
		"payment_intent", pi.ID,
		"request_id", req.RequestID,
		"purpose", req.Purpose,
		"amount", req.AmountMinor,
	)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// WebhookVerifier checks Stripe-Signature headers and extracts payment
// confirmations.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier returns a verifier for the endpoint signing secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Parse verifies payload against signatureHeader. It returns
// ErrInvalidSignature for anything that does not verify, nil for verified
// events other than payment_intent.succeeded, and a Confirmation otherwise.
func (v *WebhookVerifier) Parse(payload []byte, signatureHeader string) (*Confirmation, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		slog.Debug("ignoring stripe event", "type", event.Type, "event_id", event.ID)
		return nil, nil
	}
	if event.Data == nil {
		return nil, errors.New("payment: event has no data")
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("payment: decode payment intent: %w", err)
	}

	return &Confirmation{
		EventID:         event.ID,
		PaymentIntentID: pi.ID,
		RequestID:       pi.Metadata[metaRequestID],
		Purpose:         pi.Metadata[metaPurpose],
		AmountMinor:     pi.Amount,
	}, nil
}
