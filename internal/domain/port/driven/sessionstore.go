package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// SessionStore resolves bearer session tokens handed out by the primary
// authentication flow into verified identities.
type SessionStore interface {
	// Create records a session for identity that is valid until expiresAt.
	Create(ctx context.Context, token string, identity model.Identity, expiresAt time.Time) error

	// Resolve returns the identity behind token. Returns (nil, nil) when the
	// token is unknown or its session has expired.
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}
