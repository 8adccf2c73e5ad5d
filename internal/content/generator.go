// Package content produces the marketing copy for a template site. The
// generator asks an LLM for the five copy fields and falls back to
// deterministic copy built from the visitor's own facts, so callers always
// get a fully populated result.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"barbersites/internal/ai"
	"barbersites/internal/metrics"
	"barbersites/internal/models"
)

const (
	systemPrompt = "You are a professional copywriter specializing in barbershop and salon marketing content. " +
		"Generate compelling, professional content that converts visitors into customers."

	// maxResponseTokens bounds the provider's answer; the JSON object is small.
	maxResponseTokens = 1000
)

// Facts are the visitor-supplied details the copy is written from.
type Facts struct {
	BusinessName     string
	BusinessLocation string
	BusinessType     string
	Services         string // free text, comma separated
	Description      string
}

// TextGenerator is the LLM dependency. *ai.Registry satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// Generator writes site copy. It never returns an error: provider problems
// are logged and absorbed by the fallback copy.
type Generator struct {
	llm     TextGenerator
	timeout time.Duration
}

// NewGenerator returns a Generator that gives the provider at most timeout
// to answer. A zero timeout leaves only the caller's context deadline.
func NewGenerator(llm TextGenerator, timeout time.Duration) *Generator {
	return &Generator{llm: llm, timeout: timeout}
}

// Generate returns copy for f with every field populated.
func (g *Generator) Generate(ctx context.Context, f Facts) models.GeneratedContent {
	outcome := g.ask(ctx, f)

	content, defaulted := resolve(f, outcome)
	switch {
	case outcome.Err != nil:
		slog.Warn("content generation degraded, using fallback copy",
			"business", f.BusinessName, "error", outcome.Err)
		metrics.ContentGenerations.WithLabelValues(metrics.OutcomeFallback).Inc()
	case defaulted > 0:
		slog.Info("content generation incomplete, defaulted fields",
			"business", f.BusinessName, "defaulted", defaulted)
		metrics.ContentGenerations.WithLabelValues(metrics.OutcomePartial).Inc()
	default:
		metrics.ContentGenerations.WithLabelValues(metrics.OutcomeProvider).Inc()
	}
	return content
}

// ask performs the single provider call and parses its answer.
func (g *Generator) ask(ctx context.Context, f Facts) Outcome {
	if g.llm == nil {
		return Failed(errors.New("no content provider configured"))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.llm.Generate(ctx, ai.Request{
		System:    systemPrompt,
		Prompt:    BuildPrompt(f),
		MaxTokens: maxResponseTokens,
		JSON:      true,
	})
	metrics.ContentGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Failed(fmt.Errorf("provider call: %w", err))
	}

	draft, err := ParseDraft(text)
	if err != nil {
		return Failed(err)
	}
	return Succeeded(draft)
}

// BuildPrompt renders the user prompt for f.
func BuildPrompt(f Facts) string {
	businessType := f.BusinessType
	if strings.TrimSpace(businessType) == "" {
		businessType = models.DefaultBusinessType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create website content for a %s business with these details:\n\n", strings.ToLower(businessType))
	fmt.Fprintf(&b, "Business Name: %s\n", f.BusinessName)
	fmt.Fprintf(&b, "Location: %s\n", f.BusinessLocation)
	fmt.Fprintf(&b, "Business Type: %s\n", businessType)
	fmt.Fprintf(&b, "Services: %s\n", f.Services)
	fmt.Fprintf(&b, "Description: %s\n\n", f.Description)
	b.WriteString("Respond with a JSON object containing exactly these fields:\n")
	b.WriteString("- headline: a catchy main headline (max 60 characters)\n")
	b.WriteString("- tagline: a compelling tagline (max 100 characters)\n")
	b.WriteString("- aboutUs: an about us section (150-200 words)\n")
	fmt.Fprintf(&b, "- serviceDescriptions: an array of 3-%d short service descriptions\n", models.MaxServiceDescriptions)
	b.WriteString("- callToAction: a call to action button label (max 30 characters)\n")
	return b.String()
}
