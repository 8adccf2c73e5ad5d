// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"barbersites/internal/models"
)

// PersonalizedRequestStore handles personalized_requests rows.
type PersonalizedRequestStore struct {
	db *sql.DB
}

// NewPersonalizedRequestStore creates a new PersonalizedRequestStore with the given database connection.
func NewPersonalizedRequestStore(db *sql.DB) *PersonalizedRequestStore {
	return &PersonalizedRequestStore{db: db}
}

// final_quote is NUMERIC(10,2); it crosses the boundary as integer cents.
const personalizedColumns = `
	id, full_name, email, phone, business_name, business_location,
	business_description, color_scheme, style_preference, features,
	additional_requirements, consultation_paid, consultation_completed,
	(final_quote * 100)::BIGINT, final_paid, stripe_consultation_payment_id,
	stripe_final_payment_id, status, created_at`

func scanPersonalizedRequest(row rowScanner) (*models.PersonalizedRequest, error) {
	var (
		p        models.PersonalizedRequest
		features []byte
		quote    sql.NullInt64
	)
	if err := row.Scan(
		&p.ID, &p.FullName, &p.Email, &p.Phone, &p.BusinessName, &p.BusinessLocation,
		&p.BusinessDescription, &p.ColorScheme, &p.StylePreference, &features,
		&p.AdditionalRequirements, &p.ConsultationPaid, &p.ConsultationCompleted,
		&quote, &p.FinalPaid, &p.ConsultationPaymentID,
		&p.FinalPaymentID, &p.Status, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if quote.Valid {
		p.FinalQuoteCents = &quote.Int64
	}
	return &p, nil
}

// Create inserts a new personalized request with status pending.
func (s *PersonalizedRequestStore) Create(ctx context.Context, p *models.PersonalizedRequest) (*models.PersonalizedRequest, error) {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO personalized_requests (id, full_name, email, phone, business_name,
		                                   business_location, business_description,
		                                   color_scheme, style_preference, features,
		                                   additional_requirements, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING`+personalizedColumns,
		id, p.FullName, p.Email, p.Phone, p.BusinessName,
		p.BusinessLocation, p.BusinessDescription,
		p.ColorScheme, p.StylePreference, featuresJSON,
		p.AdditionalRequirements, models.StatusPending,
	)
	result, err := scanPersonalizedRequest(row)
	if err != nil {
		return nil, fmt.Errorf("create personalized request: %w", err)
	}
	return result, nil
}

// FindByID retrieves a personalized request by its UUID. Returns nil if not found.
func (s *PersonalizedRequestStore) FindByID(ctx context.Context, id uuid.UUID) (*models.PersonalizedRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+personalizedColumns+` FROM personalized_requests WHERE id = $1`, id)
	p, err := scanPersonalizedRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find personalized request by id: %w", err)
	}
	return p, nil
}

// List returns every personalized request, newest first.
func (s *PersonalizedRequestStore) List(ctx context.Context) ([]models.PersonalizedRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+personalizedColumns+` FROM personalized_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list personalized requests: %w", err)
	}
	defer rows.Close()

	var items []models.PersonalizedRequest
	for rows.Next() {
		p, err := scanPersonalizedRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan personalized request: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// UpdateStatus writes status as given. There is no transition check.
func (s *PersonalizedRequestStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	return execOne(ctx, s.db, "update personalized request status",
		`UPDATE personalized_requests SET status = $2 WHERE id = $1`, id, status)
}

// MarkConsultationPaid flips consultation_paid once; replays are no-ops.
func (s *PersonalizedRequestStore) MarkConsultationPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error) {
	return execOne(ctx, s.db, "mark consultation paid", `
		UPDATE personalized_requests
		SET consultation_paid = TRUE, stripe_consultation_payment_id = $2
		WHERE id = $1 AND consultation_paid = FALSE`,
		id, paymentIntentID)
}

// CompleteConsultation records that the consultation call took place.
func (s *PersonalizedRequestStore) CompleteConsultation(ctx context.Context, id uuid.UUID) (bool, error) {
	return execOne(ctx, s.db, "complete consultation",
		`UPDATE personalized_requests SET consultation_completed = TRUE WHERE id = $1`, id)
}

// SetFinalQuote prices the custom project. A quote cannot change once the
// final payment has been received.
func (s *PersonalizedRequestStore) SetFinalQuote(ctx context.Context, id uuid.UUID, cents int64) (bool, error) {
	return execOne(ctx, s.db, "set final quote", `
		UPDATE personalized_requests
		SET final_quote = $2::NUMERIC / 100
		WHERE id = $1 AND final_paid = FALSE`,
		id, cents)
}

// MarkFinalPaid flips final_paid once and records the charged amount as
// the final quote; replays are no-ops. A zero amount keeps the stored quote.
func (s *PersonalizedRequestStore) MarkFinalPaid(ctx context.Context, id uuid.UUID, paymentIntentID string, cents int64) (bool, error) {
	return execOne(ctx, s.db, "mark final paid", `
		UPDATE personalized_requests
		SET final_paid = TRUE, stripe_final_payment_id = $2,
		    final_quote = COALESCE(NULLIF($3::BIGINT, 0)::NUMERIC / 100, final_quote)
		WHERE id = $1 AND final_paid = FALSE`,
		id, paymentIntentID, cents)
}
