// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"net/http"
	"time"
)

// mistralProvider talks to Mistral's OpenAI-compatible chat completions API.
type mistralProvider struct {
	inner *openAIProvider
}

func newMistral(cfg ProviderConfig) *mistralProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	return &mistralProvider{
		inner: &openAIProvider{
			label:  "mistral",
			config: cfg,
			client: &http.Client{Timeout: 60 * time.Second},
		},
	}
}

func (p *mistralProvider) Name() string { return "mistral" }

// Generate delegates to the OpenAI wire format; Mistral accepts the same
// json_object response format.
func (p *mistralProvider) Generate(ctx context.Context, req Request) (string, error) {
	return p.inner.Generate(ctx, req)
}
