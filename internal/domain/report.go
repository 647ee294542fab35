package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubtaskFailure records a subtask that produced no usable result and why.
type SubtaskFailure struct {
	SubtaskID  uuid.UUID  `json:"subtask_id"`
	Capability Capability `json:"capability"`
	Reason     string     `json:"reason"`
}

// Report is the caller-visible answer for one query: the reconciled claims
// grouped by source capability, the contradiction record, and dispatch
// metadata. Failed subtasks are listed rather than silently omitted.
type Report struct {
	QueryID          uuid.UUID        `json:"query_id"`
	Query            string           `json:"query"`
	Summary          string           `json:"summary"`
	WebInsights      []Claim          `json:"web_insights"`
	AcademicInsights []Claim          `json:"academic_insights"`
	MediaInsights    []Claim          `json:"media_insights"`
	Resolutions      []Resolution     `json:"resolutions"`
	Unresolved       []Contradiction  `json:"unresolved_contradictions"`
	SourcesAnalyzed  int              `json:"sources_analyzed"`
	FailedSubtasks   []SubtaskFailure `json:"failed_subtasks,omitempty"`
	UsedCache        bool             `json:"used_cache"`
	CreatedAt        time.Time        `json:"created_at"`
}

// InsightsFor returns the report's claim list for one capability.
func (r *Report) InsightsFor(c Capability) []Claim {
	switch c {
	case CapabilityWeb:
		return r.WebInsights
	case CapabilityAcademic:
		return r.AcademicInsights
	case CapabilityMultimodal:
		return r.MediaInsights
	}
	return nil
}
