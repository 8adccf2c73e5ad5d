package requests

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"barbersites/internal/metrics"
	"barbersites/internal/payment"
)

// RecordPayment applies a verified confirmation. Unknown purposes and ids
// are ignored. Replays are no-ops: the ledger drops repeated event ids and
// the store only flips a flag that is still false, so the first payment
// reference is never overwritten.
func (s *Service) RecordPayment(ctx context.Context, c payment.Confirmation) error {
	purpose := c.Purpose
	if !knownPurpose(purpose) {
		purpose = "unknown"
	}

	if s.events != nil && s.events.Seen(ctx, c.EventID) {
		slog.Info("duplicate payment event", "event_id", c.EventID)
		metrics.PaymentConfirmations.WithLabelValues(purpose, metrics.PaymentDuplicate).Inc()
		return nil
	}

	id, err := uuid.Parse(c.RequestID)
	if err != nil || purpose == "unknown" {
		slog.Info("ignoring payment confirmation",
			"event_id", c.EventID, "request_id", c.RequestID, "purpose", c.Purpose)
		metrics.PaymentConfirmations.WithLabelValues(purpose, metrics.PaymentIgnored).Inc()
		return nil
	}

	applied, exists, err := s.markPaid(ctx, id, purpose, c)
	if err != nil {
		if s.events != nil {
			s.events.Forget(ctx, c.EventID)
		}
		return &PersistenceError{Op: "record " + purpose + " payment", Err: err}
	}

	switch {
	case applied:
		slog.Info("payment recorded",
			"request_id", id, "purpose", purpose, "payment_intent", c.PaymentIntentID)
		metrics.PaymentConfirmations.WithLabelValues(purpose, metrics.PaymentApplied).Inc()
	case exists:
		slog.Info("payment already recorded", "request_id", id, "purpose", purpose)
		metrics.PaymentConfirmations.WithLabelValues(purpose, metrics.PaymentDuplicate).Inc()
	default:
		slog.Info("payment for unknown request ignored", "request_id", id, "purpose", purpose)
		metrics.PaymentConfirmations.WithLabelValues(purpose, metrics.PaymentIgnored).Inc()
	}
	return nil
}

// markPaid flips the flag for purpose. When nothing changed, exists tells
// an already-paid request apart from a missing one. The final payment also
// stores the charged amount as the quote, so a quote edited after the
// intent was issued never shows as paid.
func (s *Service) markPaid(ctx context.Context, id uuid.UUID, purpose string, c payment.Confirmation) (applied, exists bool, err error) {
	ref := c.PaymentIntentID
	switch purpose {
	case payment.PurposeTemplate:
		if applied, err = s.templates.MarkPaid(ctx, id, ref); err != nil || applied {
			return applied, applied, err
		}
		rec, err := s.templates.FindByID(ctx, id)
		return false, rec != nil, err
	case payment.PurposeConsultation:
		if applied, err = s.personalized.MarkConsultationPaid(ctx, id, ref); err != nil || applied {
			return applied, applied, err
		}
	case payment.PurposeFinal:
		if applied, err = s.personalized.MarkFinalPaid(ctx, id, ref, c.AmountMinor); err != nil || applied {
			return applied, applied, err
		}
	}
	rec, err := s.personalized.FindByID(ctx, id)
	return false, rec != nil, err
}

func knownPurpose(p string) bool {
	switch p {
	case payment.PurposeTemplate, payment.PurposeConsultation, payment.PurposeFinal:
		return true
	}
	return false
}
