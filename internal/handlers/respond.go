// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the request service over a JSON HTTP API. Public
// handlers serve the site-builder frontend and the payment webhook; admin
// handlers back the dashboard.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"barbersites/internal/requests"
)

// maxJSONBody bounds request bodies decoded as JSON.
const maxJSONBody = 1 << 20

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Fields  []requests.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeServiceError maps a service error onto a status code. Errors without
// a mapping are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *requests.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "validation_error",
			Message: "One or more fields are invalid.",
			Fields:  verr.Fields,
		})
	case errors.Is(err, requests.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Request not found.")
	case errors.Is(err, requests.ErrNotPaid):
		writeError(w, http.StatusConflict, "not_paid", "The request has not been paid.")
	case errors.Is(err, requests.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "already_paid", "The request has already been paid.")
	case errors.Is(err, requests.ErrNoQuote):
		writeError(w, http.StatusConflict, "no_quote", "No final quote has been set.")
	case errors.Is(err, requests.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "File storage is not configured.")
	case errors.Is(err, requests.ErrPaymentsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "payments_unavailable", "Payments are not configured.")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
	}
}

// decodeJSON reads a JSON body into dst. It writes a 400 and returns false
// when the body is missing, oversized or malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body is too large.")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "bad_request", "Request body is required.")
		default:
			writeError(w, http.StatusBadRequest, "bad_request", "Request body is not valid JSON.")
		}
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. Malformed ids cannot name a
// stored request, so they answer 404.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Request not found.")
		return uuid.Nil, false
	}
	return id, true
}

// bodyID parses a requestId carried in a JSON body.
func bodyID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "validation_error",
			Message: "One or more fields are invalid.",
			Fields:  []requests.FieldError{{Field: "requestId", Message: "requestId is required"}},
		})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Request not found.")
		return uuid.Nil, false
	}
	return id, true
}
