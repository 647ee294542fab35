package service

import (
	"context"
	"strings"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decomposer splits a research query into capability-scoped subtasks.
// Capability selection runs in precedence order: explicit hints win, then
// an optional LLM classification, then keyword heuristics, and finally a
// plain web subtask so no query ever decomposes to nothing.
type Decomposer struct {
	llmClient domain.LLMClient
	logger    *zap.Logger
}

func NewDecomposer(lc domain.LLMClient, logger *zap.Logger) *Decomposer {
	return &Decomposer{llmClient: lc, logger: logger}
}

var academicKeywords = []string{
	"paper", "papers", "study", "studies", "journal", "peer-reviewed",
	"arxiv", "publication", "publications", "academic", "literature",
	"citation", "citations", "thesis",
}

var multimodalKeywords = []string{
	"video", "videos", "image", "images", "photo", "photos", "audio",
	"podcast", "podcasts", "diagram", "diagrams", "chart", "charts",
	"visual", "footage", "screenshot", "screenshots",
}

var webKeywords = []string{
	"news", "latest", "current", "today", "recent", "website", "websites",
	"online", "trend", "trends", "announcement", "blog",
}

// Decompose produces one subtask per selected capability, in canonical
// order (web, academic, multimodal) so identical queries always yield
// identical subtask lists.
func (d *Decomposer) Decompose(ctx context.Context, q domain.Query) []domain.Subtask {
	capabilities := hintCapabilities(q.Hints)

	if len(capabilities) == 0 && d.llmClient != nil {
		classified, err := d.llmClient.ClassifyQuery(ctx, q.Text)
		if err != nil {
			d.logger.Warn("query classification failed, using keyword routing", zap.Error(err))
		} else {
			capabilities = classified
		}
	}

	if len(capabilities) == 0 {
		capabilities = keywordCapabilities(q.Text)
	}
	if len(capabilities) == 0 {
		capabilities = []domain.Capability{domain.CapabilityWeb}
	}

	selected := make(map[domain.Capability]bool, len(capabilities))
	for _, c := range capabilities {
		selected[c] = true
	}

	now := time.Now()
	var subtasks []domain.Subtask
	for _, c := range []domain.Capability{domain.CapabilityWeb, domain.CapabilityAcademic, domain.CapabilityMultimodal} {
		if !selected[c] {
			continue
		}
		subtasks = append(subtasks, domain.Subtask{
			ID:         uuid.New(),
			QueryID:    q.ID,
			Capability: c,
			Text:       q.Text,
			CreatedAt:  now,
		})
	}
	return subtasks
}

// hintCapabilities extracts the valid capabilities from query hints,
// dropping anything unknown.
func hintCapabilities(hints domain.QueryHints) []domain.Capability {
	var capabilities []domain.Capability
	for _, c := range hints.Capabilities {
		if domain.ValidCapability(string(c)) {
			capabilities = append(capabilities, c)
		}
	}
	return capabilities
}

// keywordCapabilities routes by token matching: academic and multimodal
// terms select their agents, web terms or the absence of any match select
// the web agent.
func keywordCapabilities(text string) []domain.Capability {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[strings.Trim(tok, `.,;:!?"'()[]`)] = true
	}

	matches := func(keywords []string) bool {
		for _, k := range keywords {
			if tokens[k] {
				return true
			}
		}
		return false
	}

	var capabilities []domain.Capability
	if matches(webKeywords) {
		capabilities = append(capabilities, domain.CapabilityWeb)
	}
	if matches(academicKeywords) {
		capabilities = append(capabilities, domain.CapabilityAcademic)
	}
	if matches(multimodalKeywords) {
		capabilities = append(capabilities, domain.CapabilityMultimodal)
	}
	if len(capabilities) == 0 {
		capabilities = append(capabilities, domain.CapabilityWeb)
	}
	return capabilities
}
