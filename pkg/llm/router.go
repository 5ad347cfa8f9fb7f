package llm

import (
	"github.com/quietdesk/companion/pkg/config"
)

// Build selects a provider from configuration. It returns nil when no
// provider is configured or a required API key is missing; callers treat a
// nil client as "no LLM" and fall back to heuristics.
func Build(cfg *config.Config) Client {
	var client Client
	switch cfg.LLMProvider {
	case "ollama":
		client = NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		client = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil
		}
		client = NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel)
	default:
		return nil
	}
	return Limited(client, cfg.LLMRatePerMinute)
}
