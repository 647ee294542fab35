package agent

import (
	"fmt"
	"sort"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

// Registry maps capability tags to agent implementations. Adding a
// capability means registering one more agent; nothing else changes.
// Build the table up front: Register is not safe to call concurrently
// with Lookup.
type Registry struct {
	agents map[domain.Capability]domain.Agent
}

func NewRegistry(agents ...domain.Agent) *Registry {
	r := &Registry{agents: make(map[domain.Capability]domain.Agent)}
	for _, a := range agents {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a domain.Agent) {
	r.agents[a.Capability()] = a
}

func (r *Registry) Lookup(c domain.Capability) (domain.Agent, error) {
	a, ok := r.agents[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCapability, c)
	}
	return a, nil
}

func (r *Registry) Capabilities() []domain.Capability {
	caps := make([]domain.Capability, 0, len(r.agents))
	for c := range r.agents {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
