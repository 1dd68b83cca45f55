package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	middlewares := []Middleware{Recovery(h.logger), Logging(h.logger)}
	if h.observer != nil {
		middlewares = append(middlewares, Instrument(h.observer))
	}
	chain := Chain(middlewares...)

	// Submit
	mux.Handle("POST /api/ce/submit", chain(http.HandlerFunc(h.Submit)))

	// Tasks
	mux.Handle("GET /api/ce/task/{id}", chain(http.HandlerFunc(h.GetTask)))
	mux.Handle("POST /api/ce/task/{id}/cancel", chain(http.HandlerFunc(h.CancelTask)))

	// Activity
	mux.Handle("GET /api/ce/activity", chain(http.HandlerFunc(h.Activity)))
	mux.Handle("GET /api/ce/activity_status", chain(http.HandlerFunc(h.ActivityStatus)))
}
