// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/careerhub/internal/adapter/driven/contexttoken"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// ErrMissingSecret is returned when CAREERHUB_SIGNING_SECRET is unset or empty.
var ErrMissingSecret = errors.New("CAREERHUB_SIGNING_SECRET is required")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SigningSecret       []byte
	TokenTTL            time.Duration
	ToolOrigin          string
	PublicURL           string
	ToolURLs            map[model.ToolType]string
	ContextInQuery      bool
	ListenAddr          string
	DBPath              string
	VerifyRatePerMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// CAREERHUB_SIGNING_SECRET is required and must be at least
// contexttoken.MinSecretLength bytes.
// Optional variables with defaults: CAREERHUB_TOKEN_TTL (15m), CAREERHUB_TOOL_ORIGIN
// (empty, any origin), CAREERHUB_PUBLIC_URL (http://<listen addr>), CAREERHUB_TOOL_URLS
// (name=url,...), CAREERHUB_CONTEXT_IN_QUERY (false), CAREERHUB_LISTEN_ADDR
// (127.0.0.1:8080), CAREERHUB_DB_PATH (careerhub.db), CAREERHUB_VERIFY_RATE_PER_MINUTE (120).
func Load() (*Config, error) {
	secret := os.Getenv("CAREERHUB_SIGNING_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if len(secret) < contexttoken.MinSecretLength {
		return nil, fmt.Errorf("CAREERHUB_SIGNING_SECRET must be at least %d bytes, got %d", contexttoken.MinSecretLength, len(secret))
	}

	tokenTTL := model.DefaultContextTTL
	if v, ok := os.LookupEnv("CAREERHUB_TOKEN_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERHUB_TOKEN_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("CAREERHUB_TOKEN_TTL must be positive, got %s", parsed)
		}
		tokenTTL = parsed
	}

	var toolOrigin string
	if v := strings.TrimSpace(os.Getenv("CAREERHUB_TOOL_ORIGIN")); v != "" {
		origin, err := parseOrigin(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERHUB_TOOL_ORIGIN: %w", err)
		}
		toolOrigin = origin
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CAREERHUB_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	publicURL := "http://" + listenAddr
	if v := strings.TrimSpace(os.Getenv("CAREERHUB_PUBLIC_URL")); v != "" {
		origin, err := parseOrigin(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERHUB_PUBLIC_URL: %w", err)
		}
		publicURL = origin
	}

	toolURLs := map[model.ToolType]string{}
	if v, ok := os.LookupEnv("CAREERHUB_TOOL_URLS"); ok && v != "" {
		parsed, err := ParseToolURLs(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERHUB_TOOL_URLS: %w", err)
		}
		toolURLs = parsed
	}

	var contextInQuery bool
	if v, ok := os.LookupEnv("CAREERHUB_CONTEXT_IN_QUERY"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CAREERHUB_CONTEXT_IN_QUERY has invalid boolean %q: %w", v, err)
		}
		contextInQuery = parsed
	}

	dbPath := "careerhub.db"
	if v, ok := os.LookupEnv("CAREERHUB_DB_PATH"); ok {
		dbPath = v
	}

	verifyRate := 120
	if v, ok := os.LookupEnv("CAREERHUB_VERIFY_RATE_PER_MINUTE"); ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("CAREERHUB_VERIFY_RATE_PER_MINUTE must be a non-negative integer, got %q", v)
		}
		verifyRate = parsed
	}

	return &Config{
		SigningSecret:       []byte(secret),
		TokenTTL:            tokenTTL,
		ToolOrigin:          toolOrigin,
		PublicURL:           publicURL,
		ToolURLs:            toolURLs,
		ContextInQuery:      contextInQuery,
		ListenAddr:          listenAddr,
		DBPath:              dbPath,
		VerifyRatePerMinute: verifyRate,
	}, nil
}

// ParseToolURLs parses a comma-separated list of name=url pairs. Every URL
// must be an absolute http or https URL.
func ParseToolURLs(raw string) (map[model.ToolType]string, error) {
	tools := make(map[model.ToolType]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, rawURL, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		rawURL = strings.TrimSpace(rawURL)
		if !ok || name == "" || rawURL == "" {
			return nil, fmt.Errorf("entry %q is not name=url", pair)
		}

		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("tool %q has invalid url %q", name, rawURL)
		}
		if _, dup := tools[model.ToolType(name)]; dup {
			return nil, fmt.Errorf("tool %q listed twice", name)
		}
		tools[model.ToolType(name)] = rawURL
	}
	return tools, nil
}

// parseOrigin validates raw as a scheme://host[:port] origin and returns it
// without a trailing slash.
func parseOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("origin %q must use http or https", raw)
	}
	if u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("origin %q must be scheme://host[:port] only", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
