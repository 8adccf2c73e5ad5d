package models

// MaxServiceDescriptions caps the number of service entries shown on a site.
const MaxServiceDescriptions = 5

// GeneratedContent is the marketing copy produced for a template request.
// Length targets (headline 60, tagline 100, about 150-200 words, CTA 30)
// are given to the provider as guidance and are not enforced.
type GeneratedContent struct {
	Headline            string   `json:"headline"`
	Tagline             string   `json:"tagline"`
	AboutUs             string   `json:"aboutUs"`
	ServiceDescriptions []string `json:"serviceDescriptions"`
	CallToAction        string   `json:"callToAction"`
}

// Complete reports whether every field carries a value.
func (g GeneratedContent) Complete() bool {
	return g.Headline != "" && g.Tagline != "" && g.AboutUs != "" &&
		len(g.ServiceDescriptions) > 0 && g.CallToAction != ""
}
