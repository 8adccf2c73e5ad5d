// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL persistence layer for template
// and personalized requests. Every operation touches exactly one row, so
// no multi-statement transactions are needed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"barbersites/internal/models"
)

// TemplateRequestStore handles template_requests rows.
type TemplateRequestStore struct {
	db *sql.DB
}

// NewTemplateRequestStore creates a new TemplateRequestStore with the given database connection.
func NewTemplateRequestStore(db *sql.DB) *TemplateRequestStore {
	return &TemplateRequestStore{db: db}
}

const templateColumns = `
	id, full_name, email, phone, business_name, business_type,
	business_location, services, description, selected_template, logo_url,
	generated_content, html_content, deployment_url, paid,
	stripe_payment_intent_id, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplateRequest(row rowScanner) (*models.TemplateRequest, error) {
	var (
		t       models.TemplateRequest
		content []byte
	)
	if err := row.Scan(
		&t.ID, &t.FullName, &t.Email, &t.Phone, &t.BusinessName, &t.BusinessType,
		&t.BusinessLocation, &t.Services, &t.Description, &t.SelectedTemplate, &t.LogoURL,
		&content, &t.HTMLContent, &t.DeploymentURL, &t.Paid,
		&t.PaymentIntentID, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	if content != nil {
		var gc models.GeneratedContent
		if err := json.Unmarshal(content, &gc); err != nil {
			return nil, fmt.Errorf("decode generated content: %w", err)
		}
		t.GeneratedContent = &gc
	}
	return &t, nil
}

// Create inserts a bare template request (no content yet) and returns the
// stored row. A zero ID is replaced with a fresh UUID.
func (s *TemplateRequestStore) Create(ctx context.Context, t *models.TemplateRequest) (*models.TemplateRequest, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	businessType := t.BusinessType
	if businessType == "" {
		businessType = models.DefaultBusinessType
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO template_requests (id, full_name, email, phone, business_name,
		                               business_type, business_location, services,
		                               description, selected_template, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING`+templateColumns,
		id, t.FullName, t.Email, t.Phone, t.BusinessName,
		businessType, t.BusinessLocation, t.Services,
		t.Description, t.SelectedTemplate, t.LogoURL,
	)
	result, err := scanTemplateRequest(row)
	if err != nil {
		return nil, fmt.Errorf("create template request: %w", err)
	}
	return result, nil
}

// FindByID retrieves a template request by its UUID. Returns nil if not found.
func (s *TemplateRequestStore) FindByID(ctx context.Context, id uuid.UUID) (*models.TemplateRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+templateColumns+` FROM template_requests WHERE id = $1`, id)
	t, err := scanTemplateRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template request by id: %w", err)
	}
	return t, nil
}

// List returns all template requests, newest first.
func (s *TemplateRequestStore) List(ctx context.Context) ([]models.TemplateRequest, error) {
	return s.query(ctx, "list template requests",
		`SELECT`+templateColumns+` FROM template_requests ORDER BY created_at DESC`)
}

// ListOrphans returns requests created before cutoff that never had content
// attached. They are left behind when attaching content fails.
func (s *TemplateRequestStore) ListOrphans(ctx context.Context, cutoff time.Time) ([]models.TemplateRequest, error) {
	return s.query(ctx, "list orphaned template requests", `
		SELECT`+templateColumns+`
		FROM template_requests
		WHERE generated_content IS NULL AND created_at < $1
		ORDER BY created_at`, cutoff)
}

func (s *TemplateRequestStore) query(ctx context.Context, op, q string, args ...any) ([]models.TemplateRequest, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.TemplateRequest
	for rows.Next() {
		t, err := scanTemplateRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template request: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// AttachContent stores generated content and rendered HTML in one statement.
// Returns false if no row matched.
func (s *TemplateRequestStore) AttachContent(ctx context.Context, id uuid.UUID, content models.GeneratedContent, html string) (bool, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return false, fmt.Errorf("encode generated content: %w", err)
	}
	return execOne(ctx, s.db, "attach template content",
		`UPDATE template_requests SET generated_content = $2, html_content = $3 WHERE id = $1`,
		id, payload, html)
}

// MarkPaid flips the paid flag and records the payment intent reference.
// It only applies while the request is unpaid, so replays of the same
// confirmation leave the first reference in place. Returns true if this
// call changed the row.
func (s *TemplateRequestStore) MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error) {
	return execOne(ctx, s.db, "mark template request paid", `
		UPDATE template_requests
		SET paid = TRUE, stripe_payment_intent_id = $2
		WHERE id = $1 AND paid = FALSE`,
		id, paymentIntentID)
}

// SetDeployment records where the rendered site was published.
func (s *TemplateRequestStore) SetDeployment(ctx context.Context, id uuid.UUID, url string) (bool, error) {
	return execOne(ctx, s.db, "set template deployment",
		`UPDATE template_requests SET deployment_url = $2 WHERE id = $1`, id, url)
}

// DeleteOrphans removes content-less requests created before cutoff.
// Paid rows are kept so a payment is never lost.
func (s *TemplateRequestStore) DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM template_requests
		WHERE generated_content IS NULL AND created_at < $1 AND paid = FALSE`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned template requests: %w", err)
	}
	return res.RowsAffected()
}

// execOne runs a single-row update and reports whether a row matched.
func execOne(ctx context.Context, db *sql.DB, op, q string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n > 0, nil
}
