package requests

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"barbersites/internal/models"
	"barbersites/internal/payment"
)

// SubmitPersonalized validates sub and stores it with status pending.
func (s *Service) SubmitPersonalized(ctx context.Context, sub PersonalizedSubmission) (uuid.UUID, error) {
	sub.normalize()
	if err := check(&sub); err != nil {
		return uuid.Nil, err
	}

	rec, err := s.personalized.Create(ctx, sub.toModel())
	if err != nil {
		return uuid.Nil, &PersistenceError{Op: "create personalized request", Err: err}
	}

	slog.Info("personalized request submitted", "request_id", rec.ID, "business", rec.BusinessName)
	return rec.ID, nil
}

// GetPersonalized returns one personalized request.
func (s *Service) GetPersonalized(ctx context.Context, id uuid.UUID) (*models.PersonalizedRequest, error) {
	rec, err := s.personalized.FindByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "find personalized request", Err: err}
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListPersonalized returns every personalized request, newest first.
func (s *Service) ListPersonalized(ctx context.Context) ([]models.PersonalizedRequest, error) {
	items, err := s.personalized.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list personalized requests", Err: err}
	}
	return items, nil
}

// UpdateStatus stores status exactly as given. Any non-empty value is
// accepted in any direction.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == "" {
		return invalidField("status", "status is required")
	}
	applied, err := s.personalized.UpdateStatus(ctx, id, status)
	if err != nil {
		return &PersistenceError{Op: "update personalized request status", Err: err}
	}
	if !applied {
		return ErrNotFound
	}
	slog.Info("personalized request status updated", "request_id", id, "status", status)
	return nil
}

// CompleteConsultation marks the consultation as held.
func (s *Service) CompleteConsultation(ctx context.Context, id uuid.UUID) error {
	applied, err := s.personalized.CompleteConsultation(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "complete consultation", Err: err}
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// SetFinalQuote prices the custom project in minor units. The quote is
// frozen once the final payment is in.
func (s *Service) SetFinalQuote(ctx context.Context, id uuid.UUID, cents int64) error {
	if cents <= 0 {
		return invalidField("amount", "amount must be greater than zero")
	}
	applied, err := s.personalized.SetFinalQuote(ctx, id, cents)
	if err != nil {
		return &PersistenceError{Op: "set final quote", Err: err}
	}
	if !applied {
		if _, err := s.GetPersonalized(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	slog.Info("final quote set", "request_id", id, "amount", cents)
	return nil
}

// CreateConsultationPayment issues the fixed-price consultation intent.
func (s *Service) CreateConsultationPayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error) {
	rec, err := s.GetPersonalized(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.ConsultationPaid {
		return nil, ErrAlreadyPaid
	}
	return s.issue(ctx, rec.ID, payment.AmountConsultation, payment.PurposeConsultation)
}

// CreateFinalPayment issues an intent for the quoted project price.
func (s *Service) CreateFinalPayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error) {
	rec, err := s.GetPersonalized(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.FinalQuoteCents == nil || *rec.FinalQuoteCents <= 0 {
		return nil, ErrNoQuote
	}
	if rec.FinalPaid {
		return nil, ErrAlreadyPaid
	}
	return s.issue(ctx, rec.ID, *rec.FinalQuoteCents, payment.PurposeFinal)
}
