package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// MockClient is a deterministic, offline embedding client. By default it
// hashes tokens into a fixed-size unit vector, so identical text always
// embeds to the identical vector and overlapping vocabulary produces
// proportionally similar vectors. Set Vectors to pin exact outputs for
// specific inputs, or EmbedError to force the failure path. Safe for
// concurrent use; configure before sharing.
type MockClient struct {
	Vectors    map[string][]float32
	EmbedError error

	mu sync.Mutex
	// Call tracking for assertions
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Vectors: make(map[string][]float32),
	}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.EmbedCalls = append(c.EmbedCalls, text)
	c.mu.Unlock()
	if c.EmbedError != nil {
		return nil, c.EmbedError
	}
	if v, ok := c.Vectors[text]; ok {
		return v, nil
	}
	return hashEmbed(text), nil
}

// Reset clears all recorded calls and pinned vectors.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Vectors = make(map[string][]float32)
	c.EmbedError = nil
	c.EmbedCalls = nil
}

// hashEmbed buckets lowercased tokens into a Dimensions-size vector and
// L2-normalizes it. Not semantically meaningful, but stable and cheap.
func hashEmbed(text string) []float32 {
	vec := make([]float32, Dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%Dimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
