package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Lineage/internal/domain"
)

// RecordResponse — ответ с записью индекса.
type RecordResponse struct {
	ID          uuid.UUID `json:"id"`
	Workflow    string    `json:"workflow"`
	JobID       string    `json:"job_id"`
	Digest      string    `json:"digest"`
	AlgoVersion string    `json:"algo_version"`
	ComputedAt  time.Time `json:"computed_at"`
}

// RecordFromDomain конвертирует domain.HashRecord в RecordResponse.
func RecordFromDomain(rec domain.HashRecord) RecordResponse {
	return RecordResponse{
		ID:          rec.ID,
		Workflow:    rec.Workflow,
		JobID:       rec.JobID,
		Digest:      rec.Digest,
		AlgoVersion: rec.AlgoVersion,
		ComputedAt:  rec.ComputedAt,
	}
}

// WorkflowSummaryResponse — сводка по workflow.
type WorkflowSummaryResponse struct {
	Workflow       string    `json:"workflow"`
	Records        int       `json:"records"`
	LastComputedAt time.Time `json:"last_computed_at"`
}

// WorkflowSummaryFromDomain конвертирует domain.WorkflowSummary.
func WorkflowSummaryFromDomain(s domain.WorkflowSummary) WorkflowSummaryResponse {
	return WorkflowSummaryResponse{
		Workflow:       s.Workflow,
		Records:        s.Records,
		LastComputedAt: s.LastComputedAt,
	}
}

// PurgeResponse — результат массовой инвалидации.
type PurgeResponse struct {
	AlgoVersion string `json:"algo_version"`
	Deleted     int64  `json:"deleted"`
}
