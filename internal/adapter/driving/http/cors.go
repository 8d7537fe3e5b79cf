package httphandler

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// newToolCORS builds the CORS policy of the verification endpoint. An empty
// toolOrigin allows every origin; no credentials (cookies) are ever allowed,
// tools authenticate with the bearer context token alone.
func newToolCORS(toolOrigin string) *cors.Cors {
	origins := []string{"*"}
	if o := strings.TrimSuffix(strings.TrimSpace(toolOrigin), "/"); o != "" {
		origins = []string{o}
	}

	return cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:       []string{"Authorization", "Content-Type"},
		AllowCredentials:     false,
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}
