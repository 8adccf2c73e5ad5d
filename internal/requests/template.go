package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"barbersites/internal/content"
	"barbersites/internal/imaging"
	"barbersites/internal/metrics"
	"barbersites/internal/models"
	"barbersites/internal/payment"
	"barbersites/internal/render"
)

// TemplateResult is returned by SubmitTemplate.
type TemplateResult struct {
	RequestID        uuid.UUID               `json:"requestId"`
	GeneratedContent models.GeneratedContent `json:"generatedContent"`
	HTMLContent      string                  `json:"htmlContent"`
}

// SubmitTemplate validates sub, stores a bare request, generates copy,
// renders the site and attaches both to the request. When attaching fails
// the bare row is left in place and reported through PersistenceError.
func (s *Service) SubmitTemplate(ctx context.Context, sub TemplateSubmission) (*TemplateResult, error) {
	sub.normalize()
	if err := check(&sub); err != nil {
		return nil, err
	}

	rec, err := s.templates.Create(ctx, sub.toModel())
	if err != nil {
		return nil, &PersistenceError{Op: "create template request", Err: err}
	}

	// A disconnecting client must not leave the row half-finished.
	ctx = context.WithoutCancel(ctx)

	generated := s.content.Generate(ctx, content.Facts{
		BusinessName:     rec.BusinessName,
		BusinessLocation: rec.BusinessLocation,
		BusinessType:     rec.BusinessType,
		Services:         rec.Services,
		Description:      rec.Description,
	})

	html, err := s.renderer.Render(render.SiteFromRequest(rec), generated)
	if err != nil {
		return nil, s.orphaned(rec.ID, "render template site", err)
	}

	applied, err := s.templates.AttachContent(ctx, rec.ID, generated, html)
	if err == nil && !applied {
		err = errors.New("request row disappeared")
	}
	if err != nil {
		return nil, s.orphaned(rec.ID, "attach template content", err)
	}

	if s.previews != nil {
		s.previews.Set(ctx, rec.ID, html)
	}

	slog.Info("template request submitted",
		"request_id", rec.ID, "business", rec.BusinessName, "template", rec.SelectedTemplate)
	return &TemplateResult{RequestID: rec.ID, GeneratedContent: generated, HTMLContent: html}, nil
}

func (s *Service) orphaned(id uuid.UUID, op string, err error) error {
	metrics.OrphanedRequests.Inc()
	slog.Error("template request left without content", "request_id", id, "op", op, "error", err)
	return &PersistenceError{Op: op, OrphanID: id, Err: err}
}

// CreateTemplatePayment issues the fixed-price intent for a template site.
func (s *Service) CreateTemplatePayment(ctx context.Context, id uuid.UUID) (*payment.Intent, error) {
	rec, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Paid {
		return nil, ErrAlreadyPaid
	}
	return s.issue(ctx, rec.ID, payment.AmountTemplate, payment.PurposeTemplate)
}

// GetTemplate returns one template request.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.TemplateRequest, error) {
	rec, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "find template request", Err: err}
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ListTemplates returns every template request, newest first.
func (s *Service) ListTemplates(ctx context.Context) ([]models.TemplateRequest, error) {
	items, err := s.templates.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list template requests", Err: err}
	}
	return items, nil
}

// ListOrphans returns template requests older than olderThan that never
// received content.
func (s *Service) ListOrphans(ctx context.Context, olderThan time.Duration) ([]models.TemplateRequest, error) {
	items, err := s.templates.ListOrphans(ctx, s.now().Add(-olderThan))
	if err != nil {
		return nil, &PersistenceError{Op: "list orphaned template requests", Err: err}
	}
	return items, nil
}

// PurgeOrphans deletes unpaid orphans older than olderThan and returns how
// many were removed.
func (s *Service) PurgeOrphans(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, invalidField("older_than", "older_than must be a positive duration")
	}
	n, err := s.templates.DeleteOrphans(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, &PersistenceError{Op: "purge orphaned template requests", Err: err}
	}
	if n > 0 {
		slog.Info("orphaned template requests purged", "deleted", n, "older_than", olderThan)
	}
	return n, nil
}

// Preview returns the rendered site of a request, from cache when possible.
func (s *Service) Preview(ctx context.Context, id uuid.UUID) (string, error) {
	if s.previews != nil {
		if html, ok := s.previews.Get(ctx, id); ok {
			return html, nil
		}
	}

	rec, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.HTMLContent == nil {
		return "", fmt.Errorf("%w: no rendered site yet", ErrNotFound)
	}

	if s.previews != nil {
		s.previews.Set(ctx, id, *rec.HTMLContent)
	}
	return *rec.HTMLContent, nil
}

// Publish uploads the rendered site of a paid request and records the
// public URL as its deployment location.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (string, error) {
	if s.objects == nil {
		return "", ErrStorageUnavailable
	}
	rec, err := s.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	if !rec.Paid {
		return "", ErrNotPaid
	}
	if rec.HTMLContent == nil {
		return "", fmt.Errorf("%w: no rendered site yet", ErrNotFound)
	}

	url, err := s.objects.PutSite(ctx, id, rec.BusinessName, *rec.HTMLContent)
	if err != nil {
		return "", fmt.Errorf("publish site: %w", err)
	}
	applied, err := s.templates.SetDeployment(ctx, id, url)
	if err != nil {
		return "", &PersistenceError{Op: "set deployment url", Err: err}
	}
	if !applied {
		return "", ErrNotFound
	}

	slog.Info("site published", "request_id", id, "url", url)
	return url, nil
}

// AttachLogo normalises an uploaded logo and stores it, returning the URL
// to submit as logoUrl.
func (s *Service) AttachLogo(ctx context.Context, data []byte) (string, error) {
	if s.objects == nil {
		return "", ErrStorageUnavailable
	}
	logo, err := imaging.NormalizeLogo(data)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrEmpty):
			return "", invalidField("logo", "logo is required")
		case errors.Is(err, imaging.ErrTooLarge):
			return "", invalidField("logo", "logo is too large")
		case errors.Is(err, imaging.ErrUnsupported):
			return "", invalidField("logo", "logo must be a PNG, JPEG, GIF, BMP or TIFF image")
		}
		return "", err
	}

	url, err := s.objects.PutLogo(ctx, logo.Data)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}
	return url, nil
}
