// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"barbersites/internal/models"
	"barbersites/internal/requests"
)

// defaultOrphanAge is used by the orphan purge when no older_than is given.
const defaultOrphanAge = 24 * time.Hour

// AdminService is the part of the request service the dashboard uses.
type AdminService interface {
	ListPersonalized(ctx context.Context) ([]models.PersonalizedRequest, error)
	GetPersonalized(ctx context.Context, id uuid.UUID) (*models.PersonalizedRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CompleteConsultation(ctx context.Context, id uuid.UUID) error
	SetFinalQuote(ctx context.Context, id uuid.UUID, cents int64) error
	ListTemplates(ctx context.Context) ([]models.TemplateRequest, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.TemplateRequest, error)
	ListOrphans(ctx context.Context, olderThan time.Duration) ([]models.TemplateRequest, error)
	PurgeOrphans(ctx context.Context, olderThan time.Duration) (int64, error)
	Publish(ctx context.Context, id uuid.UUID) (string, error)
}

// ProviderSwitcher selects the active text-generation provider.
type ProviderSwitcher interface {
	ActiveName() string
	Available() []string
	SetActive(name string) error
}

// Admin groups the dashboard handlers. Authentication is applied by the
// router.
type Admin struct {
	svc AdminService
	ai  ProviderSwitcher
}

// NewAdmin creates the admin handler group.
func NewAdmin(svc AdminService, ai ProviderSwitcher) *Admin {
	return &Admin{svc: svc, ai: ai}
}

// ListPersonalized returns every personalized request, newest first.
func (a *Admin) ListPersonalized(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListPersonalized(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []models.PersonalizedRequest{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetPersonalized returns one personalized request.
func (a *Admin) GetPersonalized(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := a.svc.GetPersonalized(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateStatus sets the workflow status of a personalized request.
func (a *Admin) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := a.svc.UpdateStatus(r.Context(), id, body.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CompleteConsultation marks the consultation of a request as held.
func (a *Admin) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.CompleteConsultation(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetFinalQuote records the final price. The amount arrives in major units
// and is stored in cents.
func (a *Admin) SetFinalQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount float64 `json:"amount"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	cents := math.Round(body.Amount * 100)
	if math.IsNaN(cents) || math.IsInf(cents, 0) || cents > math.MaxInt32 {
		writeServiceError(w, r, &requests.ValidationError{
			Fields: []requests.FieldError{{Field: "amount", Message: "amount is out of range"}},
		})
		return
	}
	if err := a.svc.SetFinalQuote(r.Context(), id, int64(cents)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"finalQuoteCents": int64(cents)})
}

// ListTemplates returns template requests. With ?orphaned=<duration> it
// returns only requests older than that which never received content.
func (a *Admin) ListTemplates(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.TemplateRequest
		err   error
	)
	if raw := r.URL.Query().Get("orphaned"); raw != "" {
		age, ok := parseAge(w, r, "orphaned", raw)
		if !ok {
			return
		}
		items, err = a.svc.ListOrphans(r.Context(), age)
	} else {
		items, err = a.svc.ListTemplates(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []models.TemplateRequest{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetTemplate returns one template request.
func (a *Admin) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := a.svc.GetTemplate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PublishTemplate uploads the site of a paid request to object storage.
func (a *Admin) PublishTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	url, err := a.svc.Publish(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deploymentUrl": url})
}

// PurgeOrphans deletes unpaid template requests that never received
// content. ?older_than defaults to 24h.
func (a *Admin) PurgeOrphans(w http.ResponseWriter, r *http.Request) {
	age := defaultOrphanAge
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		var ok bool
		if age, ok = parseAge(w, r, "older_than", raw); !ok {
			return
		}
	}
	n, err := a.svc.PurgeOrphans(r.Context(), age)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func parseAge(w http.ResponseWriter, r *http.Request, field, raw string) (time.Duration, bool) {
	age, err := time.ParseDuration(raw)
	if err != nil || age <= 0 {
		writeServiceError(w, r, &requests.ValidationError{
			Fields: []requests.FieldError{{Field: field, Message: field + " must be a positive duration such as 24h"}},
		})
		return 0, false
	}
	return age, true
}

type providerState struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// AIProvider reports the active and configured text-generation providers.
func (a *Admin) AIProvider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.providerState())
}

// AISetProvider switches the active provider at runtime.
func (a *Admin) AISetProvider(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider string `json:"provider"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	name := strings.TrimSpace(body.Provider)
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "No provider specified.")
		return
	}

	if err := a.ai.SetActive(name); err != nil {
		slog.Warn("failed to switch AI provider", "provider", name, "error", err)
		writeError(w, http.StatusBadRequest, "provider_unavailable",
			"Cannot switch to "+name+": provider not available (no API key configured).")
		return
	}

	slog.Info("ai provider switched", "provider", name)
	writeJSON(w, http.StatusOK, a.providerState())
}

func (a *Admin) providerState() providerState {
	available := a.ai.Available()
	if available == nil {
		available = []string{}
	}
	return providerState{Active: a.ai.ActiveName(), Available: available}
}
