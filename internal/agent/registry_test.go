package agent

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

func TestRegistry_Lookup(t *testing.T) {
	web := NewMockAgent(domain.CapabilityWeb)
	academic := NewMockAgent(domain.CapabilityAcademic)
	r := NewRegistry(web, academic)

	got, err := r.Lookup(domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Capability() != domain.CapabilityWeb {
		t.Fatalf("expected web agent, got %s", got.Capability())
	}
}

func TestRegistry_LookupUnsupported(t *testing.T) {
	r := NewRegistry(NewMockAgent(domain.CapabilityWeb))

	_, err := r.Lookup(domain.CapabilityMultimodal)
	if !errors.Is(err, ErrUnsupportedCapability) {
		t.Fatalf("expected ErrUnsupportedCapability, got %v", err)
	}
}

func TestRegistry_Register_Replaces(t *testing.T) {
	first := NewMockAgent(domain.CapabilityWeb)
	second := NewMockAgent(domain.CapabilityWeb)
	r := NewRegistry(first)
	r.Register(second)

	got, err := r.Lookup(domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != second {
		t.Fatal("expected later registration to replace earlier one")
	}
}

func TestRegistry_Capabilities_Sorted(t *testing.T) {
	r := NewRegistry(
		NewMockAgent(domain.CapabilityWeb),
		NewMockAgent(domain.CapabilityAcademic),
		NewMockAgent(domain.CapabilityMultimodal),
	)

	caps := r.Capabilities()
	if len(caps) != 3 {
		t.Fatalf("expected 3 capabilities, got %d", len(caps))
	}
	want := []domain.Capability{
		domain.CapabilityAcademic,
		domain.CapabilityMultimodal,
		domain.CapabilityWeb,
	}
	for i, c := range want {
		if caps[i] != c {
			t.Fatalf("expected %s at index %d, got %s", c, i, caps[i])
		}
	}
}

func TestNewPool_Mock(t *testing.T) {
	agents, err := NewPool(ProviderMock, "", "", "", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
}

func TestNewPool_UnknownProvider(t *testing.T) {
	_, err := NewPool("carrier-pigeon", "", "", "", 0)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
