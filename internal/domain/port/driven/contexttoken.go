package driven

import (
	"errors"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// Sentinel errors returned by TokenVerifier implementations. Driving adapters
// must not expose the difference to clients.
var (
	// ErrTokenInvalid covers malformed, unsigned, tampered and incomplete tokens.
	ErrTokenInvalid = errors.New("context token invalid")

	// ErrTokenExpired indicates a well-formed token whose expiry has passed.
	ErrTokenExpired = errors.New("context token expired")
)

// TokenIssuer mints signed, read-scoped context tokens. Implementations hold
// the signing secret; it never crosses this interface.
type TokenIssuer interface {
	// Issue mints a token for applicationID owned by callerID embedding
	// fields. A ttl of zero or less selects model.DefaultContextTTL.
	Issue(callerID, applicationID string, fields model.ShareableFields, ttl time.Duration) (model.IssuedToken, error)
}

// TokenVerifier validates context tokens. It authenticates the token only;
// binding it to a requested resource is the caller's responsibility.
type TokenVerifier interface {
	Verify(token string) (*model.ContextClaims, error)
}
