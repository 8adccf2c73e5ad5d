// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"barbersites/internal/metrics"
	"barbersites/internal/payment"
	"barbersites/internal/requests"
)

func TestSubmitTemplate(t *testing.T) {
	svc := &stubService{}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := do(t, h, http.MethodPost, "/api/template-request", map[string]string{
		"fullName":         "Mike Smith",
		"businessName":     "Mike's Cuts",
		"selectedTemplate": "modern",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	if svc.templateSub.BusinessName != "Mike's Cuts" || svc.templateSub.SelectedTemplate != "modern" {
		t.Errorf("submission not decoded: %+v", svc.templateSub)
	}

	var body struct {
		RequestID        string `json:"requestId"`
		GeneratedContent struct {
			Headline string `json:"headline"`
		} `json:"generatedContent"`
		HTMLContent string `json:"htmlContent"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RequestID != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("requestId: got %q", body.RequestID)
	}
	if body.GeneratedContent.Headline != "Welcome to Mike's Cuts" {
		t.Errorf("headline: got %q", body.GeneratedContent.Headline)
	}
	if body.HTMLContent == "" {
		t.Error("htmlContent missing")
	}
}

func TestSubmitTemplateBadBody(t *testing.T) {
	h := testRouter(&stubService{}, stubWebhook{}, &stubProviders{})

	tests := []struct {
		name string
		body any
	}{
		{"empty", nil},
		{"malformed", "{not json"},
		{"wrong type", `{"businessName": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/template-request", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
			if got := decodeError(t, w).Error; got != "bad_request" {
				t.Errorf("error code: got %q", got)
			}
		})
	}
}

func TestSubmitTemplateValidationError(t *testing.T) {
	svc := &stubService{err: &requests.ValidationError{Fields: []requests.FieldError{
		{Field: "email", Message: "email must be a valid email address"},
	}}}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := do(t, h, http.MethodPost, "/api/template-request", map[string]string{"email": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
	body := decodeError(t, w)
	if body.Error != "validation_error" {
		t.Errorf("error code: got %q", body.Error)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "email" {
		t.Errorf("fields: got %+v", body.Fields)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{requests.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: no rendered site yet", requests.ErrNotFound), http.StatusNotFound, "not_found"},
		{requests.ErrNotPaid, http.StatusConflict, "not_paid"},
		{requests.ErrAlreadyPaid, http.StatusConflict, "already_paid"},
		{requests.ErrNoQuote, http.StatusConflict, "no_quote"},
		{requests.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
		{requests.ErrPaymentsUnavailable, http.StatusServiceUnavailable, "payments_unavailable"},
		{&requests.PersistenceError{Op: "insert", Err: errors.New("connection refused")}, http.StatusInternalServerError, "internal_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			writeServiceError(w, r, tt.err)

			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
			body := decodeError(t, w)
			if body.Error != tt.code {
				t.Errorf("error code: got %q, want %q", body.Error, tt.code)
			}
			if strings.Contains(body.Message, "connection refused") || strings.Contains(body.Message, "boom") {
				t.Errorf("internal detail leaked: %q", body.Message)
			}
		})
	}
}

func TestCreatePayments(t *testing.T) {
	paths := []string{
		"/api/create-template-payment",
		"/api/create-consultation-payment",
		"/api/create-final-payment",
	}
	const id = "33333333-3333-3333-3333-333333333333"

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			svc := &stubService{}
			h := testRouter(svc, stubWebhook{}, &stubProviders{})

			w := do(t, h, http.MethodPost, path, map[string]string{"requestId": id})
			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200 (%s)", w.Code, w.Body.String())
			}
			var body map[string]string
			json.NewDecoder(w.Body).Decode(&body)
			if body["clientSecret"] != "pi_1_secret" {
				t.Errorf("clientSecret: got %q", body["clientSecret"])
			}
			if svc.paymentFor.String() != id {
				t.Errorf("service called for %s", svc.paymentFor)
			}
		})
	}
}

func TestCreatePaymentRequestID(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		want      int
	}{
		{"missing", "", http.StatusBadRequest},
		{"malformed", "not-a-uuid", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			h := testRouter(svc, stubWebhook{}, &stubProviders{})

			w := do(t, h, http.MethodPost, "/api/create-template-payment", map[string]string{"requestId": tt.requestID})
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
			if svc.paymentFor.String() != "00000000-0000-0000-0000-000000000000" {
				t.Error("service must not be called")
			}
		})
	}
}

func TestCreatePaymentAlreadyPaid(t *testing.T) {
	svc := &stubService{err: requests.ErrAlreadyPaid}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := do(t, h, http.MethodPost, "/api/create-final-payment", map[string]string{
		"requestId": "33333333-3333-3333-3333-333333333333",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", w.Code)
	}
}

func TestSubmitPersonalized(t *testing.T) {
	svc := &stubService{}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := do(t, h, http.MethodPost, "/api/personalized-request", map[string]any{
		"fullName": "Jane Doe",
		"features": []string{"Online Booking"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["requestId"] != "22222222-2222-2222-2222-222222222222" {
		t.Errorf("requestId: got %q", body["requestId"])
	}
	if len(svc.personalizedSub.Features) != 1 {
		t.Errorf("features not decoded: %+v", svc.personalizedSub)
	}
}

func TestStripeWebhookCountsRejections(t *testing.T) {
	counter := metrics.PaymentConfirmations.WithLabelValues("unknown", metrics.PaymentRejected)
	before := testutil.ToFloat64(counter)

	hook := stubWebhook{err: fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature)}
	h := testRouter(&stubService{}, hook, &stubProviders{})
	do(t, h, http.MethodPost, "/api/stripe-webhook", `{}`)
	do(t, h, http.MethodPost, "/api/stripe-webhook", `{}`)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("rejected count: got %v, want 2", got)
	}
}

func TestStripeWebhook(t *testing.T) {
	conf := &payment.Confirmation{EventID: "evt_1", RequestID: "abc", Purpose: payment.PurposeTemplate}

	tests := []struct {
		name     string
		hook     stubWebhook
		svcErr   error
		want     int
		recorded int
	}{
		{"confirmed", stubWebhook{conf: conf}, nil, http.StatusOK, 1},
		{"ignored event", stubWebhook{}, nil, http.StatusOK, 0},
		{"bad signature", stubWebhook{err: fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature)}, nil, http.StatusBadRequest, 0},
		{"undecodable", stubWebhook{err: errors.New("payment: decode payment intent")}, nil, http.StatusBadRequest, 0},
		{"record fails", stubWebhook{conf: conf}, errors.New("db down"), http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.svcErr}
			h := testRouter(svc, tt.hook, &stubProviders{})

			w := do(t, h, http.MethodPost, "/api/stripe-webhook", `{"id":"evt_1"}`)
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
			if len(svc.recorded) != tt.recorded {
				t.Errorf("recorded: got %d, want %d", len(svc.recorded), tt.recorded)
			}
		})
	}
}

func logoUpload(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "logo.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadLogo(t *testing.T) {
	svc := &stubService{}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, logoUpload(t, "logo", []byte("\x89PNG fake")))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	if string(svc.logo) != "\x89PNG fake" {
		t.Errorf("logo bytes not passed through: %q", svc.logo)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["logoUrl"] != "https://cdn.example.com/logos/x.png" {
		t.Errorf("logoUrl: got %q", body["logoUrl"])
	}
}

func TestUploadLogoErrors(t *testing.T) {
	t.Run("wrong field", func(t *testing.T) {
		h := testRouter(&stubService{}, stubWebhook{}, &stubProviders{})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, logoUpload(t, "file", []byte("x")))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status: got %d, want 400", w.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		h := testRouter(&stubService{}, stubWebhook{}, &stubProviders{})
		w := do(t, h, http.MethodPost, "/api/logo", `{"logo":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status: got %d, want 400", w.Code)
		}
	})

	t.Run("storage disabled", func(t *testing.T) {
		h := testRouter(&stubService{err: requests.ErrStorageUnavailable}, stubWebhook{}, &stubProviders{})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, logoUpload(t, "logo", []byte("x")))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status: got %d, want 503", w.Code)
		}
	})
}

func TestPreview(t *testing.T) {
	svc := &stubService{preview: "<!DOCTYPE html><html><body>site</body></html>"}
	h := testRouter(svc, stubWebhook{}, &stubProviders{})

	w := do(t, h, http.MethodGet, "/preview/44444444-4444-4444-4444-444444444444", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content-type: got %q", ct)
	}
	if w.Body.String() != svc.preview {
		t.Errorf("body: got %q", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/preview/not-a-uuid", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("malformed id: got %d, want 404", w.Code)
	}
}
