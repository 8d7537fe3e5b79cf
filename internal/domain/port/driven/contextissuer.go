package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// ErrUnauthenticated indicates the issuance boundary did not accept the
// caller's identity.
var ErrUnauthenticated = errors.New("caller not authenticated")

// ContextIssuer is the server boundary the tool launcher calls to obtain a
// context token for an application. Implementations re-check ownership.
type ContextIssuer interface {
	IssueContextToken(ctx context.Context, caller model.Identity, applicationID string) (model.IssuedToken, error)
}
