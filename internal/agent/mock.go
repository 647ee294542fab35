package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/google/uuid"
)

// MockAgent is a configurable agent for testing and offline runs.
// Set the response fields to control what Research returns; set Delay to
// simulate a slow tool server.
type MockAgent struct {
	ResearchResponse *domain.AgentResult
	ResearchError    error
	Delay            time.Duration

	// Call tracking for assertions
	ResearchCalls []domain.Subtask

	capability domain.Capability
}

func NewMockAgent(capability domain.Capability) *MockAgent {
	return &MockAgent{capability: capability}
}

func (a *MockAgent) Capability() domain.Capability {
	return a.capability
}

func (a *MockAgent) Research(ctx context.Context, task domain.Subtask) (*domain.AgentResult, error) {
	a.ResearchCalls = append(a.ResearchCalls, task)

	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrAgentTimeout, a.capability)
		}
	}

	if a.ResearchError != nil {
		return nil, a.ResearchError
	}
	if a.ResearchResponse != nil {
		return a.ResearchResponse, nil
	}

	return &domain.AgentResult{
		ID:        uuid.New(),
		SubtaskID: task.ID,
		Agent:     a.capability,
		Claims: []domain.Claim{{
			ID:         uuid.New(),
			Statement:  fmt.Sprintf("Mock %s finding for %q", a.capability, task.Text),
			Topic:      task.Text,
			Confidence: 0.8,
			Citation:   "mock://" + string(a.capability),
		}},
		Summary:   fmt.Sprintf("Mock %s research for %q", a.capability, task.Text),
		CreatedAt: time.Now(),
	}, nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (a *MockAgent) Reset() {
	a.ResearchResponse = nil
	a.ResearchError = nil
	a.Delay = 0
	a.ResearchCalls = nil
}
