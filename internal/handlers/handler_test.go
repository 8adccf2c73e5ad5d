// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against an in-memory stub of the request service, routed
// through chi so URL parameters resolve as they do in production.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"barbersites/internal/models"
	"barbersites/internal/payment"
	"barbersites/internal/requests"
)

// stubService implements PublicService and AdminService. Each call records
// its arguments; err, when set, is returned from every method.
type stubService struct {
	mu  sync.Mutex
	err error

	templateSub     requests.TemplateSubmission
	personalizedSub requests.PersonalizedSubmission
	paymentFor      uuid.UUID
	recorded        []payment.Confirmation
	logo            []byte
	status          string
	quoteCents      int64
	orphanAge       time.Duration
	purgeAge        time.Duration

	templates    []models.TemplateRequest
	personalized []models.PersonalizedRequest
	preview      string
}

func (s *stubService) SubmitTemplate(_ context.Context, sub requests.TemplateSubmission) (*requests.TemplateResult, error) {
	s.templateSub = sub
	if s.err != nil {
		return nil, s.err
	}
	return &requests.TemplateResult{
		RequestID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		GeneratedContent: models.GeneratedContent{Headline: "Welcome to " + sub.BusinessName},
		HTMLContent:      "<html></html>",
	}, nil
}

func (s *stubService) intent(id uuid.UUID) (*payment.Intent, error) {
	s.paymentFor = id
	if s.err != nil {
		return nil, s.err
	}
	return &payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
}

func (s *stubService) CreateTemplatePayment(_ context.Context, id uuid.UUID) (*payment.Intent, error) {
	return s.intent(id)
}

func (s *stubService) SubmitPersonalized(_ context.Context, sub requests.PersonalizedSubmission) (uuid.UUID, error) {
	s.personalizedSub = sub
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return uuid.MustParse("22222222-2222-2222-2222-222222222222"), nil
}

func (s *stubService) CreateConsultationPayment(_ context.Context, id uuid.UUID) (*payment.Intent, error) {
	return s.intent(id)
}

func (s *stubService) CreateFinalPayment(_ context.Context, id uuid.UUID) (*payment.Intent, error) {
	return s.intent(id)
}

func (s *stubService) RecordPayment(_ context.Context, c payment.Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = append(s.recorded, c)
	return s.err
}

func (s *stubService) Preview(_ context.Context, _ uuid.UUID) (string, error) {
	return s.preview, s.err
}

func (s *stubService) AttachLogo(_ context.Context, data []byte) (string, error) {
	s.logo = data
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/logos/x.png", nil
}

func (s *stubService) ListPersonalized(context.Context) ([]models.PersonalizedRequest, error) {
	return s.personalized, s.err
}

func (s *stubService) GetPersonalized(_ context.Context, id uuid.UUID) (*models.PersonalizedRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.PersonalizedRequest{ID: id}, nil
}

func (s *stubService) UpdateStatus(_ context.Context, _ uuid.UUID, status string) error {
	s.status = status
	return s.err
}

func (s *stubService) CompleteConsultation(context.Context, uuid.UUID) error { return s.err }

func (s *stubService) SetFinalQuote(_ context.Context, _ uuid.UUID, cents int64) error {
	s.quoteCents = cents
	return s.err
}

func (s *stubService) ListTemplates(context.Context) ([]models.TemplateRequest, error) {
	return s.templates, s.err
}

func (s *stubService) GetTemplate(_ context.Context, id uuid.UUID) (*models.TemplateRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.TemplateRequest{ID: id}, nil
}

func (s *stubService) ListOrphans(_ context.Context, olderThan time.Duration) ([]models.TemplateRequest, error) {
	s.orphanAge = olderThan
	return nil, s.err
}

func (s *stubService) PurgeOrphans(_ context.Context, olderThan time.Duration) (int64, error) {
	s.purgeAge = olderThan
	return 3, s.err
}

func (s *stubService) Publish(_ context.Context, id uuid.UUID) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/sites/" + id.String() + "/index.html", nil
}

// stubWebhook returns a fixed parse result.
type stubWebhook struct {
	conf *payment.Confirmation
	err  error
}

func (s stubWebhook) Parse([]byte, string) (*payment.Confirmation, error) {
	return s.conf, s.err
}

// stubProviders implements ProviderSwitcher over a fixed provider list.
type stubProviders struct {
	active    string
	available []string
}

func (s *stubProviders) ActiveName() string  { return s.active }
func (s *stubProviders) Available() []string { return s.available }
func (s *stubProviders) SetActive(name string) error {
	for _, n := range s.available {
		if n == name {
			s.active = name
			return nil
		}
	}
	return errors.New("not available")
}

// testRouter mounts the handlers on the same paths the application uses.
func testRouter(svc *stubService, hook WebhookParser, ai ProviderSwitcher) chi.Router {
	pub := NewPublic(svc, hook)
	adm := NewAdmin(svc, ai)

	r := chi.NewRouter()
	r.Post("/api/template-request", pub.SubmitTemplate)
	r.Post("/api/create-template-payment", pub.CreateTemplatePayment)
	r.Post("/api/personalized-request", pub.SubmitPersonalized)
	r.Post("/api/create-consultation-payment", pub.CreateConsultationPayment)
	r.Post("/api/create-final-payment", pub.CreateFinalPayment)
	r.Post("/api/stripe-webhook", pub.StripeWebhook)
	r.Post("/api/logo", pub.UploadLogo)
	r.Get("/preview/{id}", pub.Preview)

	r.Get("/api/admin/personalized-requests", adm.ListPersonalized)
	r.Get("/api/admin/personalized-request/{id}", adm.GetPersonalized)
	r.Patch("/api/admin/personalized-request/{id}/status", adm.UpdateStatus)
	r.Put("/api/admin/personalized-request/{id}/quote", adm.SetFinalQuote)
	r.Post("/api/admin/personalized-request/{id}/consultation-complete", adm.CompleteConsultation)
	r.Get("/api/admin/template-requests", adm.ListTemplates)
	r.Delete("/api/admin/template-requests/orphans", adm.PurgeOrphans)
	r.Get("/api/admin/template-requests/{id}", adm.GetTemplate)
	r.Post("/api/admin/template-requests/{id}/publish", adm.PublishTemplate)
	r.Get("/api/admin/ai/provider", adm.AIProvider)
	r.Put("/api/admin/ai/provider", adm.AISetProvider)
	return r
}

// do sends a request with an optional JSON body.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// decodeError decodes an error response body.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (raw %q)", err, w.Body.String())
	}
	return body
}
