package domain

import (
	"time"

	"github.com/google/uuid"
)

type Capability string

const (
	CapabilityWeb        Capability = "web"
	CapabilityAcademic   Capability = "academic"
	CapabilityMultimodal Capability = "multimodal"
)

func ValidCapability(c string) bool {
	switch Capability(c) {
	case CapabilityWeb, CapabilityAcademic, CapabilityMultimodal:
		return true
	}
	return false
}

// QueryHints carries optional caller guidance. Explicit capabilities, when
// present, override the orchestrator's own classification.
type QueryHints struct {
	Domain       string       `json:"domain,omitempty"`
	Capabilities []Capability `json:"capabilities,omitempty"`
}

type Query struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Hints       QueryHints `json:"hints"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// Subtask is one capability-scoped unit of work derived from a query.
// It carries exactly one capability and one parent query.
type Subtask struct {
	ID         uuid.UUID  `json:"id"`
	QueryID    uuid.UUID  `json:"query_id"`
	Capability Capability `json:"capability"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ClaimKind string

const (
	ClaimKindNumeric ClaimKind = "numeric"
	ClaimKindDate    ClaimKind = "date"
	ClaimKindBoolean ClaimKind = "boolean"
	ClaimKindText    ClaimKind = "text"
)

// Claim is an atomic factual assertion. Agent, ResultID and AssertedAt are
// provenance, filled when claims are flattened out of their AgentResult.
type Claim struct {
	ID         uuid.UUID  `json:"id"`
	Statement  string     `json:"statement"`
	Topic      string     `json:"topic,omitempty"`
	Confidence float32    `json:"confidence"`
	Citation   string     `json:"citation,omitempty"`
	Agent      Capability `json:"agent,omitempty"`
	ResultID   uuid.UUID  `json:"result_id,omitempty"`
	AssertedAt time.Time  `json:"asserted_at"`
}

// AgentResult is the output of one agent invocation for one subtask.
// Immutable after creation. Claims within a single result are assumed
// internally consistent; cross-result conflicts are the validator's concern.
type AgentResult struct {
	ID        uuid.UUID  `json:"id"`
	SubtaskID uuid.UUID  `json:"subtask_id"`
	Agent     Capability `json:"agent"`
	Claims    []Claim    `json:"claims"`
	Summary   string     `json:"summary,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
