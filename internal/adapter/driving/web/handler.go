// Package web implements the browser-facing driving adapter: links in the
// dashboard point here and are redirected to external tools.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/careerhub/internal/application"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// SessionCookieName is the cookie set by the primary authentication flow.
const SessionCookieName = "careerhub_session"

// Handler is the web driving adapter that launches tools for signed-in users.
type Handler struct {
	apps     driven.ApplicationStore
	sessions driven.SessionStore
	launcher *application.Launcher
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	apps driven.ApplicationStore,
	sessions driven.SessionStore,
	launcher *application.Launcher,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		apps:     apps,
		sessions: sessions,
		launcher: launcher,
		logger:   logger,
	}
}

// LaunchTool redirects the browser to an external tool. Signed-in owners are
// sent with a context envelope for the application; everyone else lands on
// the tool without context.
func (h *Handler) LaunchTool(w http.ResponseWriter, r *http.Request) {
	tool := model.ToolType(r.PathValue("tool"))
	applicationID := r.PathValue("id")

	caller := h.identity(r)

	var app *model.Application
	if caller != nil {
		found, err := h.apps.GetByID(r.Context(), applicationID)
		if err != nil {
			h.logger.Error("failed to load application for launch", "application_id", applicationID, "error", err)
		}
		// Records of other users are passed on as well; issuance re-checks
		// ownership and the launch degrades to no context.
		app = found
	}

	dest, err := h.launcher.Resolve(r.Context(), tool, app, caller)
	if err != nil {
		if errors.Is(err, application.ErrUnknownTool) {
			http.Error(w, "unknown tool", http.StatusNotFound)
			return
		}
		h.logger.Warn("tool launch aborted", "tool", tool, "error", err)
		http.Error(w, "launch cancelled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// identity resolves the session cookie. It returns nil for anonymous
// requests and when the session store fails.
func (h *Handler) identity(r *http.Request) *model.Identity {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	identity, err := h.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Error("failed to resolve session cookie", "error", err)
		return nil
	}
	return identity
}
