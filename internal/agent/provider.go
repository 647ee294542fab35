package agent

import (
	"fmt"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

// Provider constants
const (
	ProviderHTTP = "http"
	ProviderMock = "mock"
)

// NewPool creates the three capability agents based on the provider name.
// The URLs are the research endpoints of the respective tool servers and
// are ignored by the mock provider.
func NewPool(provider, webURL, academicURL, mediaURL string, timeout time.Duration) ([]domain.Agent, error) {
	switch provider {
	case ProviderHTTP:
		return []domain.Agent{
			NewHTTPAgent(domain.CapabilityWeb, webURL, timeout),
			NewHTTPAgent(domain.CapabilityAcademic, academicURL, timeout),
			NewHTTPAgent(domain.CapabilityMultimodal, mediaURL, timeout),
		}, nil

	case ProviderMock:
		return []domain.Agent{
			NewMockAgent(domain.CapabilityWeb),
			NewMockAgent(domain.CapabilityAcademic),
			NewMockAgent(domain.CapabilityMultimodal),
		}, nil

	default:
		return nil, fmt.Errorf("unknown agent provider: %s (valid options: http, mock)", provider)
	}
}
