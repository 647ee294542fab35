package llm

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

func capabilityTag(c domain.Capability) string {
	switch c {
	case domain.CapabilityWeb:
		return "WEB"
	case domain.CapabilityAcademic:
		return "ACADEMIC"
	case domain.CapabilityMultimodal:
		return "MULTIMODAL"
	default:
		return "UNKNOWN"
	}
}

// capabilitiesFromNames filters a parsed name list down to valid,
// deduplicated capabilities, preserving input order.
func capabilitiesFromNames(names []string) []domain.Capability {
	seen := make(map[domain.Capability]bool)
	var caps []domain.Capability
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if !domain.ValidCapability(name) {
			continue
		}
		c := domain.Capability(name)
		if seen[c] {
			continue
		}
		seen[c] = true
		caps = append(caps, c)
	}
	return caps
}

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

// NewClient creates an LLM client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string) (domain.LLMClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, cerebras, mock)", provider)
	}
}
