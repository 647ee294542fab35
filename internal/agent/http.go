package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/google/uuid"
)

// HTTPAgent reaches one research agent through its tool server. The
// orchestrator never talks to search/document/media services directly;
// this client is the whole boundary.
type HTTPAgent struct {
	capability domain.Capability
	url        string
	httpClient *http.Client
}

// NewHTTPAgent creates an agent client for one capability. url is the
// full research endpoint; timeout bounds a single invocation.
func NewHTTPAgent(capability domain.Capability, url string, timeout time.Duration) *HTTPAgent {
	return &HTTPAgent{
		capability: capability,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAgent) Capability() domain.Capability {
	return a.capability
}

type researchRequest struct {
	Task       string `json:"task"`
	Capability string `json:"capability"`
}

type researchResponse struct {
	Claims []struct {
		Statement  string  `json:"statement"`
		Topic      string  `json:"topic,omitempty"`
		Confidence float32 `json:"confidence"`
		Citation   string  `json:"citation,omitempty"`
	} `json:"claims"`
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

func (a *HTTPAgent) Research(ctx context.Context, task domain.Subtask) (*domain.AgentResult, error) {
	body, err := json.Marshal(researchRequest{
		Task:       task.Text,
		Capability: string(a.capability),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal research request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create research request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %s", ErrAgentTimeout, a.capability)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrAgentUnavailable, a.capability, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read research response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d: %s", ErrAgentUnavailable, a.capability, resp.StatusCode, string(respBody))
	}

	var result researchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal research response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrAgentUnavailable, a.capability, result.Error)
	}

	out := &domain.AgentResult{
		ID:        uuid.New(),
		SubtaskID: task.ID,
		Agent:     a.capability,
		Summary:   result.Summary,
		CreatedAt: time.Now(),
	}
	for _, c := range result.Claims {
		out.Claims = append(out.Claims, domain.Claim{
			ID:         uuid.New(),
			Statement:  c.Statement,
			Topic:      c.Topic,
			Confidence: c.Confidence,
			Citation:   c.Citation,
		})
	}

	return out, nil
}
