package requests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"barbersites/internal/ai"
	"barbersites/internal/models"
	"barbersites/internal/payment"
)

var errStoreDown = errors.New("store unavailable")

// memTemplates is an in-memory TemplateStore.
type memTemplates struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.TemplateRequest
	failWrite bool // AttachContent fails
	failAll   bool // every call fails
}

func newMemTemplates() *memTemplates {
	return &memTemplates{rows: map[uuid.UUID]*models.TemplateRequest{}}
}

func (m *memTemplates) Create(_ context.Context, t *models.TemplateRequest) (*models.TemplateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	row := *t
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	m.rows[row.ID] = &row
	out := row
	return &out, nil
}

func (m *memTemplates) FindByID(_ context.Context, id uuid.UUID) (*models.TemplateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStoreDown
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (m *memTemplates) List(_ context.Context) ([]models.TemplateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TemplateRequest
	for _, r := range m.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memTemplates) ListOrphans(_ context.Context, cutoff time.Time) ([]models.TemplateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TemplateRequest
	for _, r := range m.rows {
		if r.GeneratedContent == nil && r.CreatedAt.Before(cutoff) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memTemplates) AttachContent(_ context.Context, id uuid.UUID, c models.GeneratedContent, html string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite || m.failAll {
		return false, errStoreDown
	}
	row, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	row.GeneratedContent = &c
	row.HTMLContent = &html
	return true, nil
}

func (m *memTemplates) MarkPaid(_ context.Context, id uuid.UUID, ref string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return false, errStoreDown
	}
	row, ok := m.rows[id]
	if !ok || row.Paid {
		return false, nil
	}
	row.Paid = true
	row.PaymentIntentID = &ref
	return true, nil
}

func (m *memTemplates) SetDeployment(_ context.Context, id uuid.UUID, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	row.DeploymentURL = &url
	return true, nil
}

func (m *memTemplates) DeleteOrphans(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.rows {
		if r.GeneratedContent == nil && r.CreatedAt.Before(cutoff) && !r.Paid {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memTemplates) get(id uuid.UUID) models.TemplateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

// memPersonalized is an in-memory PersonalizedStore.
type memPersonalized struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.PersonalizedRequest
}

func newMemPersonalized() *memPersonalized {
	return &memPersonalized{rows: map[uuid.UUID]*models.PersonalizedRequest{}}
}

func (m *memPersonalized) Create(_ context.Context, p *models.PersonalizedRequest) (*models.PersonalizedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *p
	row.ID = uuid.New()
	row.CreatedAt = time.Now()
	m.rows[row.ID] = &row
	out := row
	return &out, nil
}

func (m *memPersonalized) FindByID(_ context.Context, id uuid.UUID) (*models.PersonalizedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (m *memPersonalized) List(_ context.Context) ([]models.PersonalizedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PersonalizedRequest
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memPersonalized) update(id uuid.UUID, fn func(*models.PersonalizedRequest) bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	return fn(row), nil
}

func (m *memPersonalized) UpdateStatus(_ context.Context, id uuid.UUID, status string) (bool, error) {
	return m.update(id, func(p *models.PersonalizedRequest) bool {
		p.Status = models.RequestStatus(status)
		return true
	})
}

func (m *memPersonalized) MarkConsultationPaid(_ context.Context, id uuid.UUID, ref string) (bool, error) {
	return m.update(id, func(p *models.PersonalizedRequest) bool {
		if p.ConsultationPaid {
			return false
		}
		p.ConsultationPaid = true
		p.ConsultationPaymentID = &ref
		return true
	})
}

func (m *memPersonalized) CompleteConsultation(_ context.Context, id uuid.UUID) (bool, error) {
	return m.update(id, func(p *models.PersonalizedRequest) bool {
		p.ConsultationCompleted = true
		return true
	})
}

func (m *memPersonalized) SetFinalQuote(_ context.Context, id uuid.UUID, cents int64) (bool, error) {
	return m.update(id, func(p *models.PersonalizedRequest) bool {
		if p.FinalPaid {
			return false
		}
		p.FinalQuoteCents = &cents
		return true
	})
}

func (m *memPersonalized) MarkFinalPaid(_ context.Context, id uuid.UUID, ref string, cents int64) (bool, error) {
	return m.update(id, func(p *models.PersonalizedRequest) bool {
		if p.FinalPaid {
			return false
		}
		p.FinalPaid = true
		p.FinalPaymentID = &ref
		if cents > 0 {
			p.FinalQuoteCents = &cents
		}
		return true
	})
}

func (m *memPersonalized) get(id uuid.UUID) models.PersonalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

// downLLM simulates an unavailable generation provider.
type downLLM struct{}

func (downLLM) Generate(context.Context, ai.Request) (string, error) {
	return "", errors.New("provider unavailable")
}

// jsonLLM answers with a fixed response.
type jsonLLM string

func (r jsonLLM) Generate(context.Context, ai.Request) (string, error) {
	return string(r), nil
}

// fakeIssuer records issued intents.
type fakeIssuer struct {
	mu      sync.Mutex
	issued  []payment.IntentRequest
	failErr error
}

func (f *fakeIssuer) CreateIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.issued = append(f.issued, req)
	id := "pi_" + req.RequestID.String()[:8]
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

// memPreviews is an in-memory PreviewCache.
type memPreviews struct {
	mu    sync.Mutex
	items map[uuid.UUID]string
	hits  int
}

func newMemPreviews() *memPreviews { return &memPreviews{items: map[uuid.UUID]string{}} }

func (c *memPreviews) Get(_ context.Context, id uuid.UUID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	html, ok := c.items[id]
	if ok {
		c.hits++
	}
	return html, ok
}

func (c *memPreviews) Set(_ context.Context, id uuid.UUID, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = html
}

// drop evicts id, as TTL expiry would.
func (c *memPreviews) drop(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// memLedger is an in-memory EventLedger.
type memLedger struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemLedger() *memLedger { return &memLedger{seen: map[string]bool{}} }

func (l *memLedger) Seen(_ context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == "" {
		return false
	}
	if l.seen[id] {
		return true
	}
	l.seen[id] = true
	return false
}

func (l *memLedger) Forget(_ context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, id)
}

// memObjects is an in-memory ObjectStore.
type memObjects struct {
	mu    sync.Mutex
	sites map[uuid.UUID]string
	names map[uuid.UUID]string
	logos [][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{sites: map[uuid.UUID]string{}, names: map[uuid.UUID]string{}}
}

func (o *memObjects) PutSite(_ context.Context, id uuid.UUID, businessName, html string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sites[id] = html
	o.names[id] = businessName
	return "https://cdn.example.com/sites/" + id.String() + "/index.html", nil
}

func (o *memObjects) PutLogo(_ context.Context, png []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logos = append(o.logos, png)
	return "https://cdn.example.com/logos/logo.png", nil
}
