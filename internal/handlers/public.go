// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"barbersites/internal/imaging"
	"barbersites/internal/metrics"
	"barbersites/internal/payment"
	"barbersites/internal/requests"
)

// PublicService is the part of the request service the public API uses.
type PublicService interface {
	SubmitTemplate(ctx context.Context, sub requests.TemplateSubmission) (*requests.TemplateResult, error)
	CreateTemplatePayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error)
	SubmitPersonalized(ctx context.Context, sub requests.PersonalizedSubmission) (uuid.UUID, error)
	CreateConsultationPayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error)
	CreateFinalPayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error)
	RecordPayment(ctx context.Context, c payment.Confirmation) error
	Preview(ctx context.Context, id uuid.UUID) (string, error)
	AttachLogo(ctx context.Context, data []byte) (string, error)
}

// WebhookParser verifies a signed webhook payload. A nil confirmation with
// a nil error means the event is valid but not one we act on.
type WebhookParser interface {
	Parse(payload []byte, signatureHeader string) (*payment.Confirmation, error)
}

// Public groups the handlers reachable without credentials.
type Public struct {
	svc     PublicService
	webhook WebhookParser
}

// NewPublic creates the public handler group.
func NewPublic(svc PublicService, webhook WebhookParser) *Public {
	return &Public{svc: svc, webhook: webhook}
}

type paymentRequest struct {
	RequestID string `json:"requestId"`
}

type paymentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// SubmitTemplate accepts a template request, generates its site and returns
// the id, copy and HTML.
func (p *Public) SubmitTemplate(w http.ResponseWriter, r *http.Request) {
	var sub requests.TemplateSubmission
	if !decodeJSON(w, r, &sub) {
		return
	}
	res, err := p.svc.SubmitTemplate(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// CreateTemplatePayment issues the payment intent for a template request.
func (p *Public) CreateTemplatePayment(w http.ResponseWriter, r *http.Request) {
	p.createPayment(w, r, p.svc.CreateTemplatePayment)
}

// SubmitPersonalized accepts a personalized request.
func (p *Public) SubmitPersonalized(w http.ResponseWriter, r *http.Request) {
	var sub requests.PersonalizedSubmission
	if !decodeJSON(w, r, &sub) {
		return
	}
	id, err := p.svc.SubmitPersonalized(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"requestId": id.String()})
}

// CreateConsultationPayment issues the consultation fee intent.
func (p *Public) CreateConsultationPayment(w http.ResponseWriter, r *http.Request) {
	p.createPayment(w, r, p.svc.CreateConsultationPayment)
}

// CreateFinalPayment issues the intent for the quoted final amount.
func (p *Public) CreateFinalPayment(w http.ResponseWriter, r *http.Request) {
	p.createPayment(w, r, p.svc.CreateFinalPayment)
}

func (p *Public) createPayment(w http.ResponseWriter, r *http.Request, create func(context.Context, uuid.UUID) (*payment.Intent, error)) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, ok := bodyID(w, req.RequestID)
	if !ok {
		return
	}
	intent, err := create(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{ClientSecret: intent.ClientSecret})
}

// StripeWebhook verifies and applies a payment confirmation. Verification
// failures answer 400; failures to record answer 500 so the sender retries.
func (p *Public) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Could not read webhook body.")
		return
	}

	conf, err := p.webhook.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		metrics.PaymentConfirmations.WithLabelValues("unknown", metrics.PaymentRejected).Inc()
		if errors.Is(err, payment.ErrInvalidSignature) {
			slog.Warn("webhook signature rejected", "error", err)
			writeError(w, http.StatusBadRequest, "invalid_signature", "Webhook signature verification failed.")
			return
		}
		slog.Warn("webhook payload rejected", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Webhook payload could not be decoded.")
		return
	}

	if conf != nil {
		if err := p.svc.RecordPayment(r.Context(), *conf); err != nil {
			slog.Error("failed to record payment",
				"event_id", conf.EventID,
				"request_id", conf.RequestID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "internal_error", "Payment could not be recorded.")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// UploadLogo accepts a multipart "logo" file, normalises it and returns the
// public URL to submit as logoUrl.
func (p *Public) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxLogoBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxLogoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Logo is too large. Maximum size is 5 MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "Expected a multipart upload.")
		return
	}

	file, _, err := r.FormFile("logo")
	if err != nil {
		writeServiceError(w, r, &requests.ValidationError{
			Fields: []requests.FieldError{{Field: "logo", Message: "logo is required"}},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxLogoBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Could not read logo.")
		return
	}

	url, err := p.svc.AttachLogo(r.Context(), data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"logoUrl": url})
}

// Preview serves the generated site of a template request as HTML.
func (p *Public) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, err := p.svc.Preview(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, page)
}
