package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"barbersites/internal/models"
)

// Default copy used when the provider leaves a field empty or fails.
const (
	DefaultTagline      = "Your Premier Grooming Destination"
	DefaultCallToAction = "Book Your Appointment"
)

// genericServices is used when the visitor's services text yields nothing.
var genericServices = []string{"Professional haircuts", "Beard trims", "Hot towel shaves"}

// Outcome is the result of one provider call: either a parsed draft or the
// failure that prevented one.
type Outcome struct {
	Draft *models.GeneratedContent
	Err   error
}

// Succeeded wraps a parsed provider draft.
func Succeeded(d models.GeneratedContent) Outcome { return Outcome{Draft: &d} }

// Failed wraps a provider failure.
func Failed(err error) Outcome { return Outcome{Err: err} }

// Resolve turns an outcome into complete copy. A failed outcome yields the
// defaults for every field and no provider data is used. A successful one
// keeps each non-empty provider field and defaults the rest.
func Resolve(f Facts, o Outcome) models.GeneratedContent {
	c, _ := resolve(f, o)
	return c
}

// resolve also reports how many fields were defaulted on a successful outcome.
func resolve(f Facts, o Outcome) (models.GeneratedContent, int) {
	d := Defaults(f)
	if o.Err != nil || o.Draft == nil {
		return d, 5
	}

	out := models.GeneratedContent{
		Headline:            strings.TrimSpace(o.Draft.Headline),
		Tagline:             strings.TrimSpace(o.Draft.Tagline),
		AboutUs:             strings.TrimSpace(o.Draft.AboutUs),
		ServiceDescriptions: cleanList(o.Draft.ServiceDescriptions),
		CallToAction:        strings.TrimSpace(o.Draft.CallToAction),
	}

	defaulted := 0
	fill := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
			defaulted++
		}
	}
	fill(&out.Headline, d.Headline)
	fill(&out.Tagline, d.Tagline)
	fill(&out.AboutUs, d.AboutUs)
	fill(&out.CallToAction, d.CallToAction)
	if len(out.ServiceDescriptions) == 0 {
		out.ServiceDescriptions = d.ServiceDescriptions
		defaulted++
	}
	return out, defaulted
}

// Defaults builds the deterministic copy for f.
func Defaults(f Facts) models.GeneratedContent {
	name := strings.TrimSpace(f.BusinessName)
	location := strings.TrimSpace(f.BusinessLocation)
	return models.GeneratedContent{
		Headline: "Welcome to " + name,
		Tagline:  DefaultTagline,
		AboutUs: fmt.Sprintf("At %s, we provide exceptional grooming services in %s. "+
			"Our skilled barbers are dedicated to delivering quality cuts and creating "+
			"an exceptional experience for every customer.", name, location),
		ServiceDescriptions: DefaultServices(f.Services),
		CallToAction:        DefaultCallToAction,
	}
}

// DefaultServices splits the free-text services list on commas, trims and
// drops empty entries, and keeps at most MaxServiceDescriptions. If nothing
// is left a generic list is returned.
func DefaultServices(text string) []string {
	services := cleanList(strings.Split(text, ","))
	if len(services) == 0 {
		return append([]string(nil), genericServices...)
	}
	return services
}

// cleanList trims entries, drops blanks and caps the length.
func cleanList(items []string) []string {
	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == models.MaxServiceDescriptions {
			break
		}
	}
	return out
}

// ParseDraft extracts the JSON object from a provider response. Models
// sometimes wrap JSON in markdown fences or add a sentence around it.
func ParseDraft(response string) (models.GeneratedContent, error) {
	var draft models.GeneratedContent

	text := stripCodeFence(response)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return draft, errors.New("provider response contains no JSON object")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &draft); err != nil {
		return draft, fmt.Errorf("decode provider response: %w", err)
	}
	return draft, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
