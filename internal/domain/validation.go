package domain

import (
	"github.com/google/uuid"
)

// Contradiction pairs two claims whose topics align but whose asserted
// values are incompatible. Computed during reconciliation, consumed by
// resolution, not persisted on its own.
type Contradiction struct {
	ID         uuid.UUID `json:"id"`
	Topic      string    `json:"topic"`
	Kind       ClaimKind `json:"kind"`
	A          Claim     `json:"claim_a"`
	B          Claim     `json:"claim_b"`
	Similarity float32   `json:"similarity"`
}

// Resolution records which claim won a contradiction and why. The losing
// claim is retained here, never silently dropped.
type Resolution struct {
	ContradictionID uuid.UUID `json:"contradiction_id"`
	Winner          Claim     `json:"winner"`
	Superseded      Claim     `json:"superseded"`
	Rationale       string    `json:"rationale"`
}

// ValidatedResult is the reconciled claim set for one query. Claims holds
// no duplicates: near-duplicate assertions are merged with the higher
// confidence of the pair.
type ValidatedResult struct {
	Claims     []Claim         `json:"claims"`
	Resolved   []Resolution    `json:"resolutions"`
	Unresolved []Contradiction `json:"unresolved"`
}
