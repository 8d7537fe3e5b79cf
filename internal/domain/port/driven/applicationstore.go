// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// ErrApplicationNotFound indicates the application does not exist or is not
// owned by the caller. The two cases are deliberately indistinguishable.
var ErrApplicationNotFound = errors.New("application not found")

// ApplicationStore defines the driven port for application persistence.
// GetByID returns (nil, nil) when no record has the given id.
type ApplicationStore interface {
	Create(ctx context.Context, app model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
}
