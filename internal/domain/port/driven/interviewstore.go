package driven

import (
	"context"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// InterviewStore defines the driven port for interview persistence.
type InterviewStore interface {
	Create(ctx context.Context, interview model.Interview) error
	ListByApplication(ctx context.Context, applicationID string) ([]model.Interview, error)
}
