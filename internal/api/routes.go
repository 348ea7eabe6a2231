package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Workflows
	mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("GET /api/v1/workflows/{workflow}/records", chain(http.HandlerFunc(h.ListWorkflowRecords)))

	// Records
	mux.Handle("GET /api/v1/records/{digest}", chain(http.HandlerFunc(h.GetRecord)))
	mux.Handle("DELETE /api/v1/records", chain(http.HandlerFunc(h.PurgeRecords)))
}
