package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/careerhub/internal/application"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// maxIssueBody caps the issuance request body.
const maxIssueBody = 4 << 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	contexts *application.ContextService
	sessions driven.SessionStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	contexts *application.ContextService,
	sessions driven.SessionStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		contexts: contexts,
		sessions: sessions,
		logger:   logger,
	}
}

// Options configures the routes that face external tools.
type Options struct {
	// ToolOrigin is the single origin allowed to call the verification
	// endpoint cross-origin. Empty allows any origin.
	ToolOrigin string

	// VerifyRatePerMinute limits verification requests per client IP.
	// Zero or less disables limiting.
	VerifyRatePerMinute int

	// Bridge, when set, serves the messaging bridge at /api/v1/bridge.
	Bridge http.Handler
}

// RegisterAPIRoutes registers all /api/v1 routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler, opts Options) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("POST /api/v1/context/token", h.IssueContextToken)

	verify := chain(http.HandlerFunc(h.GetSharedApplication),
		NewRateLimiter(opts.VerifyRatePerMinute).Middleware,
	)
	cors := newToolCORS(opts.ToolOrigin)
	mux.Handle("GET /api/v1/context/applications/{id}", cors.Handler(verify))
	mux.Handle("OPTIONS /api/v1/context/applications/{id}", cors.Handler(http.HandlerFunc(preflight)))

	if opts.Bridge != nil {
		mux.Handle("GET /api/v1/bridge", opts.Bridge)
	}
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, opts Options, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h, opts)
	return ApplyMiddleware(mux, logger)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// IssueContextToken mints a context token for an application owned by the
// session's user. Ownership failures are reported as 404 so record ids of
// other users cannot be probed.
func (h *Handler) IssueContextToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	sessionToken, ok := bearerToken(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	identity, err := h.sessions.Resolve(r.Context(), sessionToken)
	if err != nil {
		h.logger.Error("failed to resolve session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if identity == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req IssueTokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIssueBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ApplicationID = strings.TrimSpace(req.ApplicationID)
	if req.ApplicationID == "" {
		writeError(w, http.StatusBadRequest, "applicationId is required")
		return
	}

	issued, err := h.contexts.IssueContextToken(r.Context(), *identity, req.ApplicationID)
	switch {
	case err == nil:
	case errors.Is(err, driven.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "application not found")
		return
	case errors.Is(err, driven.ErrUnauthenticated):
		writeUnauthorized(w, "authentication required")
		return
	default:
		h.logger.Error("failed to issue context token", "application_id", req.ApplicationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toIssueTokenResponse(issued))
}

// GetSharedApplication returns the application a context token grants
// access to. This is the endpoint external tools call cross-origin.
func (h *Handler) GetSharedApplication(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	token, ok := bearerToken(r)
	if !ok {
		writeUnauthorized(w, "invalid or expired token")
		return
	}

	applicationID := r.PathValue("id")

	shared, err := h.contexts.LoadSharedApplication(r.Context(), token, applicationID)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrContextUnauthorized):
		writeUnauthorized(w, "invalid or expired token")
		return
	case errors.Is(err, application.ErrContextForbidden):
		writeError(w, http.StatusForbidden, "token does not grant access to this application")
		return
	case errors.Is(err, driven.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "application not found")
		return
	default:
		h.logger.Error("failed to load shared application", "application_id", applicationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, application.NewSharedApplicationView(shared))
}

// preflight answers OPTIONS requests that are not CORS preflights.
func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// bearerToken extracts the credential of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func toIssueTokenResponse(issued model.IssuedToken) IssueTokenResponse {
	return IssueTokenResponse{
		Token:     issued.Token,
		UserID:    issued.UserID,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// chain applies middlewares so the first one listed runs first.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
