// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns business details and generated copy into a
// self-contained HTML site using one of two embedded skeletons. All values
// pass through html/template, so visitor text is always escaped.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"barbersites/internal/models"
)

//go:embed templates/*.html
var skeletonFS embed.FS

// Skeleton markers. Each rendered document carries exactly one on <body>.
const (
	ClassicMarker = `data-skeleton="classic"`
	ModernMarker  = `data-skeleton="modern"`
)

// Site holds the request-level facts shown on the page.
type Site struct {
	BusinessName string
	Phone        string
	Email        string
	Location     string
	LogoURL      string
	Template     models.Template
}

// SiteFromRequest extracts the page facts from a stored template request.
func SiteFromRequest(t *models.TemplateRequest) Site {
	s := Site{
		BusinessName: t.BusinessName,
		Phone:        t.Phone,
		Email:        t.Email,
		Location:     t.BusinessLocation,
		Template:     t.SelectedTemplate,
	}
	if t.LogoURL != nil {
		s.LogoURL = *t.LogoURL
	}
	return s
}

// pageData is the flat view passed to the skeletons.
type pageData struct {
	BusinessName string
	Phone        string
	Email        string
	Location     string
	LogoURL      string
	Headline     string
	Tagline      string
	AboutUs      string
	CallToAction string
	Services     []string
}

// Renderer executes the parsed skeletons. It is safe for concurrent use.
type Renderer struct {
	classic *template.Template
	modern  *template.Template
}

// New parses the embedded skeletons.
func New() (*Renderer, error) {
	classic, err := template.ParseFS(skeletonFS, "templates/classic.html")
	if err != nil {
		return nil, fmt.Errorf("parse classic skeleton: %w", err)
	}
	modern, err := template.ParseFS(skeletonFS, "templates/modern.html")
	if err != nil {
		return nil, fmt.Errorf("parse modern skeleton: %w", err)
	}
	return &Renderer{classic: classic, modern: modern}, nil
}

// MustNew is like New but panics on a parse error. The skeletons are
// compiled in, so a failure here is a build defect.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render produces the HTML document for site and content. "modern" selects
// the modern skeleton; every other value, including unknown ones, selects
// classic. Output is deterministic for identical input.
func (r *Renderer) Render(site Site, content models.GeneratedContent) (string, error) {
	tmpl := r.classic
	if site.Template == models.TemplateModern {
		tmpl = r.modern
	}

	data := pageData{
		BusinessName: site.BusinessName,
		Phone:        site.Phone,
		Email:        site.Email,
		Location:     site.Location,
		LogoURL:      site.LogoURL,
		Headline:     content.Headline,
		Tagline:      content.Tagline,
		AboutUs:      content.AboutUs,
		CallToAction: content.CallToAction,
		Services:     content.ServiceDescriptions,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s site: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
