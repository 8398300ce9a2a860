// Package llm wraps the generative-AI providers behind a small client
// interface with model tiers.
package llm

import "maps"

// ModelTier picks a model by how much capability a call needs.
type ModelTier string

const (
	TierLite     ModelTier = "lite"     // analysis insights
	TierStandard ModelTier = "standard" // chat replies
	TierAdvanced ModelTier = "advanced" // section rewrites
)

// Provider names a backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI covers any OpenAI-compatible chat completions API.
	ProviderOpenAI Provider = "openai"
)

// Config selects the provider, the model per tier and sampling settings.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL overrides the endpoint of an OpenAI-compatible provider.
	BaseURL string
	// Temperature applies to generation calls, ChatTemperature to Chat.
	Temperature     float32
	ChatTemperature float32
}

var providerModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o-mini",
		TierAdvanced: "gpt-4o",
	},
}

// ConfigFor returns the defaults for a provider name. Unknown names get
// Gemini.
func ConfigFor(provider string) *Config {
	p := Provider(provider)
	models, ok := providerModels[p]
	if !ok {
		p, models = ProviderGemini, providerModels[ProviderGemini]
	}
	return &Config{
		Provider:        p,
		Models:          maps.Clone(models),
		Temperature:     0.1,
		ChatTemperature: 0.7,
	}
}

// DefaultConfig is the Gemini configuration.
func DefaultConfig() *Config { return ConfigFor(string(ProviderGemini)) }

// GetModel returns the model for tier, falling back to the standard and
// then the lite model. It returns "" when none is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if m := c.Models[t]; m != "" {
			return m
		}
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string, 1)
	}
	out.Models[tier] = model
	return &out
}
