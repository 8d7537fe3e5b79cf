package web

import "net/http"

// RegisterRoutes registers all web routes on the provided mux.
// Web routes live under /app/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /app/applications/{id}/tools/{tool}", h.LaunchTool)
}
