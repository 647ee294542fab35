package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/consilium/internal/agent"
	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/Harshitk-cp/consilium/internal/embedding"
	"github.com/Harshitk-cp/consilium/internal/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orchestratorFixture struct {
	svc      *OrchestratorService
	store    *mockCacheStore
	embedder *embedding.MockClient
	llm      *llm.MockClient
}

func newOrchestratorFixture(agents ...domain.Agent) *orchestratorFixture {
	logger := zap.NewNop()
	store := newMockCacheStore()
	embedder := embedding.NewMockClient()
	llmMock := llm.NewMockClient()

	cache := NewCacheService(store, embedder, 0.95, time.Hour, logger)
	validator := NewValidationService(embedder, llmMock, logger)
	decomposer := NewDecomposer(llmMock, logger)
	registry := agent.NewRegistry(agents...)

	svc := NewOrchestratorService(registry, cache, validator, decomposer, llmMock, logger)
	return &orchestratorFixture{svc: svc, store: store, embedder: embedder, llm: llmMock}
}

func allCapabilityHints() domain.QueryHints {
	return domain.QueryHints{Capabilities: []domain.Capability{
		domain.CapabilityWeb,
		domain.CapabilityAcademic,
		domain.CapabilityMultimodal,
	}}
}

func TestOrchestrator_AllAgentsSucceed(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	academic := agent.NewMockAgent(domain.CapabilityAcademic)
	media := agent.NewMockAgent(domain.CapabilityMultimodal)
	f := newOrchestratorFixture(web, academic, media)

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text:  "impact of electric vehicles on battery recycling",
		Hints: allCapabilityHints(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.QueryID == uuid.Nil {
		t.Fatal("expected a query ID to be assigned")
	}
	if len(report.WebInsights) == 0 || len(report.AcademicInsights) == 0 || len(report.MediaInsights) == 0 {
		t.Fatalf("expected insights from every agent, got web=%d academic=%d media=%d",
			len(report.WebInsights), len(report.AcademicInsights), len(report.MediaInsights))
	}
	for _, c := range report.WebInsights {
		if c.Agent != domain.CapabilityWeb {
			t.Fatalf("web insight attributed to %s", c.Agent)
		}
	}
	if len(report.FailedSubtasks) != 0 {
		t.Fatalf("expected no failed subtasks, got %+v", report.FailedSubtasks)
	}
	if report.UsedCache {
		t.Fatal("expected no cache use on a cold cache")
	}
	if report.Summary != "Mock summary" {
		t.Fatalf("expected the LLM summary, got %q", report.Summary)
	}
	if report.SourcesAnalyzed != 3 {
		t.Fatalf("expected 3 distinct sources, got %d", report.SourcesAnalyzed)
	}
	if f.store.count() != 3 {
		t.Fatalf("expected all fresh results cached, got %d entries", f.store.count())
	}
}

func TestOrchestrator_CacheHitSkipsAgent(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	f := newOrchestratorFixture(web)

	q := domain.Query{
		Text:  "current state of offshore wind capacity",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{domain.CapabilityWeb}},
	}

	first, err := f.svc.Handle(context.Background(), q)
	if err != nil {
		t.Fatalf("first query: expected no error, got %v", err)
	}
	if first.UsedCache {
		t.Fatal("first query should not hit the cache")
	}
	if len(web.ResearchCalls) != 1 {
		t.Fatalf("expected 1 agent call after the first query, got %d", len(web.ResearchCalls))
	}

	second, err := f.svc.Handle(context.Background(), q)
	if err != nil {
		t.Fatalf("second query: expected no error, got %v", err)
	}
	if !second.UsedCache {
		t.Fatal("second identical query should be served from the cache")
	}
	if len(web.ResearchCalls) != 1 {
		t.Fatalf("expected the cached result to skip the agent, got %d calls", len(web.ResearchCalls))
	}
	if len(second.WebInsights) == 0 {
		t.Fatal("expected the cached result's claims in the report")
	}
}

func TestOrchestrator_PartialFailureAbsorbed(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	web.ResearchError = agent.ErrAgentUnavailable
	academic := agent.NewMockAgent(domain.CapabilityAcademic)
	f := newOrchestratorFixture(web, academic)

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text: "fusion reactor milestones",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{
			domain.CapabilityWeb, domain.CapabilityAcademic,
		}},
	})
	if err != nil {
		t.Fatalf("expected the partial failure to be absorbed, got %v", err)
	}

	if len(report.FailedSubtasks) != 1 {
		t.Fatalf("expected 1 failed subtask, got %d", len(report.FailedSubtasks))
	}
	if report.FailedSubtasks[0].Capability != domain.CapabilityWeb {
		t.Fatalf("expected the web subtask to fail, got %s", report.FailedSubtasks[0].Capability)
	}
	if len(report.AcademicInsights) == 0 {
		t.Fatal("expected the surviving agent's insights")
	}
	if len(report.WebInsights) != 0 {
		t.Fatal("expected no insights from the failed agent")
	}
	if f.store.count() != 1 {
		t.Fatalf("expected only the successful result cached, got %d", f.store.count())
	}
}

func TestOrchestrator_AllSubtasksFailed(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	web.ResearchError = agent.ErrAgentUnavailable
	academic := agent.NewMockAgent(domain.CapabilityAcademic)
	academic.ResearchError = agent.ErrAgentTimeout
	f := newOrchestratorFixture(web, academic)

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text: "anything at all",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{
			domain.CapabilityWeb, domain.CapabilityAcademic,
		}},
	})
	if !errors.Is(err, ErrNoUsableResults) {
		t.Fatalf("expected ErrNoUsableResults, got %v", err)
	}
	if report != nil {
		t.Fatal("expected no report when every subtask fails")
	}
}

func TestOrchestrator_UnsupportedCapabilityFailsOnlyItsSubtask(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	f := newOrchestratorFixture(web) // no multimodal agent registered

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text: "washington bridge construction footage",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{
			domain.CapabilityWeb, domain.CapabilityMultimodal,
		}},
	})
	if err != nil {
		t.Fatalf("expected the unsupported capability to be absorbed, got %v", err)
	}

	if len(report.FailedSubtasks) != 1 {
		t.Fatalf("expected 1 failed subtask, got %d", len(report.FailedSubtasks))
	}
	if report.FailedSubtasks[0].Capability != domain.CapabilityMultimodal {
		t.Fatalf("expected the multimodal subtask to fail, got %s", report.FailedSubtasks[0].Capability)
	}
	if len(report.WebInsights) == 0 {
		t.Fatal("expected web insights despite the unsupported sibling")
	}
}

func TestOrchestrator_EmptyQueryRejected(t *testing.T) {
	f := newOrchestratorFixture(agent.NewMockAgent(domain.CapabilityWeb))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.Handle(context.Background(), domain.Query{Text: text})
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("expected ErrEmptyQuery for %q, got %v", text, err)
		}
	}
}

func TestOrchestrator_TimeoutCountsAsSubtaskFailure(t *testing.T) {
	slow := agent.NewMockAgent(domain.CapabilityWeb)
	slow.Delay = 200 * time.Millisecond
	fast := agent.NewMockAgent(domain.CapabilityAcademic)
	f := newOrchestratorFixture(slow, fast)
	f.svc.QueryTimeout = 30 * time.Millisecond

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text: "deadline pressure",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{
			domain.CapabilityWeb, domain.CapabilityAcademic,
		}},
	})
	if err != nil {
		t.Fatalf("expected the timeout to be absorbed, got %v", err)
	}

	if len(report.FailedSubtasks) != 1 {
		t.Fatalf("expected 1 failed subtask, got %d", len(report.FailedSubtasks))
	}
	if report.FailedSubtasks[0].Capability != domain.CapabilityWeb {
		t.Fatalf("expected the slow web subtask to fail, got %s", report.FailedSubtasks[0].Capability)
	}
	if len(report.AcademicInsights) == 0 {
		t.Fatal("expected the fast agent's results to survive the sibling timeout")
	}
}

func TestOrchestrator_SummaryFallsBackDeterministically(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	f := newOrchestratorFixture(web)
	f.llm.SummarizeError = errors.New("provider down")

	report, err := f.svc.Handle(context.Background(), domain.Query{
		Text:  "graphene battery commercialization",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{domain.CapabilityWeb}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Summary == "" {
		t.Fatal("expected a fallback summary")
	}
	if report.Summary == "Mock summary" {
		t.Fatal("expected the fallback, not the LLM response")
	}
}

func TestOrchestrator_NilCacheStillWorks(t *testing.T) {
	web := agent.NewMockAgent(domain.CapabilityWeb)
	logger := zap.NewNop()
	llmMock := llm.NewMockClient()
	embedder := embedding.NewMockClient()
	svc := NewOrchestratorService(
		agent.NewRegistry(web),
		nil,
		NewValidationService(embedder, llmMock, logger),
		NewDecomposer(llmMock, logger),
		llmMock,
		logger,
	)

	report, err := svc.Handle(context.Background(), domain.Query{
		Text:  "cacheless operation",
		Hints: domain.QueryHints{Capabilities: []domain.Capability{domain.CapabilityWeb}},
	})
	if err != nil {
		t.Fatalf("expected no error without a cache, got %v", err)
	}
	if report.UsedCache {
		t.Fatal("expected no cache use when the cache is absent")
	}
	if len(web.ResearchCalls) != 1 {
		t.Fatalf("expected the agent to be called directly, got %d calls", len(web.ResearchCalls))
	}
}
