package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

func TestMockClientDeterministic(t *testing.T) {
	c := NewMockClient()
	ctx := context.Background()

	a, err := c.Embed(ctx, "papers on transformer attention")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := c.Embed(ctx, "papers on transformer attention")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != Dimensions {
		t.Errorf("Embed() returned %d dims, want %d", len(a), Dimensions)
	}
	if sim := domain.CosineSimilarity(a, b); sim < 0.99999 {
		t.Errorf("identical text should embed identically, similarity = %v", sim)
	}
	if len(c.EmbedCalls) != 2 {
		t.Errorf("EmbedCalls = %d, want 2", len(c.EmbedCalls))
	}
}

func TestMockClientPinnedVectors(t *testing.T) {
	c := NewMockClient()
	c.Vectors["q"] = []float32{1, 0, 0}

	got, err := c.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(got) != 3 || got[0] != 1 {
		t.Errorf("Embed() = %v, want pinned vector", got)
	}
}

func TestMockClientEmbedError(t *testing.T) {
	c := NewMockClient()
	c.EmbedError = errors.New("embedding down")

	if _, err := c.Embed(context.Background(), "q"); err == nil {
		t.Fatal("Embed() should return configured error")
	}

	c.Reset()
	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("Embed() after Reset error = %v", err)
	}
}
