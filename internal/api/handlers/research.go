package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/Harshitk-cp/consilium/internal/service"
)

type ResearchHandler struct {
	svc      *service.OrchestratorService
	registry domain.AgentRegistry
}

func NewResearchHandler(svc *service.OrchestratorService, registry domain.AgentRegistry) *ResearchHandler {
	return &ResearchHandler{svc: svc, registry: registry}
}

type researchRequest struct {
	Query string            `json:"query"`
	Hints domain.QueryHints `json:"hints"`
}

// Run executes a research query and returns the assembled report.
// The report is not persisted; repeated queries are served by the
// semantic cache instead.
func (h *ResearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, c := range req.Hints.Capabilities {
		if !domain.ValidCapability(string(c)) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("invalid capability hint: %q (valid options: web, academic, multimodal)", string(c)))
			return
		}
	}

	report, err := h.svc.Handle(r.Context(), domain.Query{
		Text:  req.Query,
		Hints: req.Hints,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoUsableResults):
			writeError(w, http.StatusBadGateway, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "research query timed out")
		default:
			writeError(w, http.StatusInternalServerError, "failed to run research query")
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type capabilitiesResponse struct {
	Capabilities []domain.Capability `json:"capabilities"`
	Count        int                 `json:"count"`
}

// Capabilities lists the capability tags with a registered agent, in
// sorted order.
func (h *ResearchHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	caps := h.registry.Capabilities()
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		Capabilities: caps,
		Count:        len(caps),
	})
}
