package llm

import (
	"context"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	ClassifyQueryResponse      []domain.Capability
	ClassifyQueryError         error
	CheckContradictionResponse bool
	CheckContradictionError    error
	SummarizeResponse          string
	SummarizeError             error

	// Call tracking for assertions
	ClassifyQueryCalls      []string
	CheckContradictionCalls []struct{ A, B string }
	SummarizeCalls          []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ClassifyQueryResponse: []domain.Capability{domain.CapabilityWeb},
		SummarizeResponse:     "Mock summary",
	}
}

func (c *MockClient) ClassifyQuery(ctx context.Context, query string) ([]domain.Capability, error) {
	c.ClassifyQueryCalls = append(c.ClassifyQueryCalls, query)
	if c.ClassifyQueryError != nil {
		return nil, c.ClassifyQueryError
	}
	return c.ClassifyQueryResponse, nil
}

func (c *MockClient) CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error) {
	c.CheckContradictionCalls = append(c.CheckContradictionCalls, struct{ A, B string }{stmtA, stmtB})
	if c.CheckContradictionError != nil {
		return false, c.CheckContradictionError
	}
	return c.CheckContradictionResponse, nil
}

func (c *MockClient) Summarize(ctx context.Context, query string, claims []domain.Claim) (string, error) {
	c.SummarizeCalls = append(c.SummarizeCalls, query)
	if c.SummarizeError != nil {
		return "", c.SummarizeError
	}
	return c.SummarizeResponse, nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.ClassifyQueryResponse = []domain.Capability{domain.CapabilityWeb}
	c.ClassifyQueryError = nil
	c.CheckContradictionResponse = false
	c.CheckContradictionError = nil
	c.SummarizeResponse = "Mock summary"
	c.SummarizeError = nil
	c.ClassifyQueryCalls = nil
	c.CheckContradictionCalls = nil
	c.SummarizeCalls = nil
}
