package driven

import (
	"context"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// DocumentStore defines the driven port for document metadata persistence.
type DocumentStore interface {
	Create(ctx context.Context, doc model.Document) error
	ListByApplication(ctx context.Context, applicationID string) ([]model.Document, error)
}
