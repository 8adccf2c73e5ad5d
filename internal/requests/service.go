// Package requests orchestrates the request lifecycle: template submissions
// with generated copy and a rendered site, personalized consultations,
// payment intents and their confirmations, and the administrator actions
// on both request kinds.
package requests

import (
	"context"
	"time"

	"github.com/google/uuid"

	"barbersites/internal/content"
	"barbersites/internal/models"
	"barbersites/internal/payment"
	"barbersites/internal/render"
)

// TemplateStore persists template requests. Lookups return nil, nil when
// the row does not exist; updates report whether a row changed.
type TemplateStore interface {
	Create(ctx context.Context, t *models.TemplateRequest) (*models.TemplateRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TemplateRequest, error)
	List(ctx context.Context) ([]models.TemplateRequest, error)
	ListOrphans(ctx context.Context, cutoff time.Time) ([]models.TemplateRequest, error)
	AttachContent(ctx context.Context, id uuid.UUID, c models.GeneratedContent, html string) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error)
	SetDeployment(ctx context.Context, id uuid.UUID, url string) (bool, error)
	DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error)
}

// PersonalizedStore persists personalized requests.
type PersonalizedStore interface {
	Create(ctx context.Context, p *models.PersonalizedRequest) (*models.PersonalizedRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PersonalizedRequest, error)
	List(ctx context.Context) ([]models.PersonalizedRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error)
	MarkConsultationPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error)
	CompleteConsultation(ctx context.Context, id uuid.UUID) (bool, error)
	SetFinalQuote(ctx context.Context, id uuid.UUID, cents int64) (bool, error)
	MarkFinalPaid(ctx context.Context, id uuid.UUID, paymentIntentID string, cents int64) (bool, error)
}

// ContentGenerator writes site copy and never fails.
type ContentGenerator interface {
	Generate(ctx context.Context, f content.Facts) models.GeneratedContent
}

// SiteRenderer turns copy into an HTML document.
type SiteRenderer interface {
	Render(site render.Site, c models.GeneratedContent) (string, error)
}

// PreviewCache holds rendered HTML keyed by request id. Best effort.
type PreviewCache interface {
	Get(ctx context.Context, id uuid.UUID) (string, bool)
	Set(ctx context.Context, id uuid.UUID, html string)
}

// EventLedger deduplicates confirmation events by id.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) bool
	Forget(ctx context.Context, eventID string)
}

// ObjectStore publishes sites and logos.
type ObjectStore interface {
	PutSite(ctx context.Context, requestID uuid.UUID, businessName, html string) (string, error)
	PutLogo(ctx context.Context, png []byte) (string, error)
}

// Deps are the collaborators of a Service. Templates, Personalized,
// Content and Renderer are required; the rest may be left nil and the
// operations that need them report that they are unavailable.
type Deps struct {
	Templates    TemplateStore
	Personalized PersonalizedStore
	Content      ContentGenerator
	Renderer     SiteRenderer
	Payments     payment.Issuer
	Previews     PreviewCache
	Events       EventLedger
	Objects      ObjectStore

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements the request operations. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	templates    TemplateStore
	personalized PersonalizedStore
	content      ContentGenerator
	renderer     SiteRenderer
	payments     payment.Issuer
	previews     PreviewCache
	events       EventLedger
	objects      ObjectStore
	now          func() time.Time
}

// New creates a Service from d.
func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		templates:    d.Templates,
		personalized: d.Personalized,
		content:      d.Content,
		renderer:     d.Renderer,
		payments:     d.Payments,
		previews:     d.Previews,
		events:       d.Events,
		objects:      d.Objects,
		now:          now,
	}
}

// PaymentsEnabled reports whether payment intents can be issued.
func (s *Service) PaymentsEnabled() bool { return s.payments != nil }

// StorageEnabled reports whether publishing and logo uploads are available.
func (s *Service) StorageEnabled() bool { return s.objects != nil }

func (s *Service) issue(ctx context.Context, id uuid.UUID, amount int64, purpose string) (*payment.Intent, error) {
	if s.payments == nil {
		return nil, ErrPaymentsUnavailable
	}
	return s.payments.CreateIntent(ctx, payment.IntentRequest{
		AmountMinor: amount,
		RequestID:   id,
		Purpose:     purpose,
	})
}
