package api

import (
	"net/http"
	"strconv"
)

// ListWorkflows возвращает сводку по workflows в индексе.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.records.ListWorkflows(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = WorkflowSummaryFromDomain(s)
	}

	List(w, result, len(result))
}

// ListWorkflowRecords возвращает записи workflow, новые первыми.
// GET /api/v1/workflows/{workflow}/records?limit=
func (h *Handler) ListWorkflowRecords(w http.ResponseWriter, r *http.Request) {
	workflow := r.PathValue("workflow")
	if workflow == "" {
		BadRequest(w, "workflow is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.records.ListByWorkflow(r.Context(), workflow, limit)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RecordResponse, len(records))
	for i, rec := range records {
		result[i] = RecordFromDomain(rec)
	}

	List(w, result, len(result))
}

// GetRecord возвращает запись по digest.
// GET /api/v1/records/{digest}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	digest := r.PathValue("digest")
	if digest == "" {
		BadRequest(w, "digest is required")
		return
	}

	rec, err := h.records.GetByDigest(r.Context(), digest)
	if HandleRepoError(w, h.logger, err, "record not found") {
		return
	}

	Success(w, RecordFromDomain(*rec))
}

// PurgeRecords удаляет все записи с указанной версией алгоритма.
// DELETE /api/v1/records?algo_version=
func (h *Handler) PurgeRecords(w http.ResponseWriter, r *http.Request) {
	algoVersion := r.URL.Query().Get("algo_version")
	if algoVersion == "" {
		BadRequest(w, "algo_version is required")
		return
	}

	deleted, err := h.records.DeleteByVersion(r.Context(), algoVersion)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.logger.Info("purged records", "algo_version", algoVersion, "deleted", deleted)
	Success(w, PurgeResponse{AlgoVersion: algoVersion, Deleted: deleted})
}
