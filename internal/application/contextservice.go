// Package application holds the use cases around sharing one job
// application with an external tool.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Sentinel errors returned by ContextService when a context token does not
// grant access to the requested record.
var (
	// ErrContextUnauthorized means the token itself was rejected.
	ErrContextUnauthorized = errors.New("context token rejected")
	// ErrContextForbidden means a valid token was presented for a record it
	// is not bound to.
	ErrContextForbidden = errors.New("context token not valid for this application")
)

// Compile-time interface satisfaction check.
var _ driven.ContextIssuer = (*ContextService)(nil)

// ContextService issues context tokens to record owners and resolves tokens
// presented by external tools back into the records they grant.
type ContextService struct {
	apps       driven.ApplicationStore
	interviews driven.InterviewStore
	documents  driven.DocumentStore
	issuer     driven.TokenIssuer
	verifier   driven.TokenVerifier
	ttl        time.Duration
	logger     *slog.Logger
}

// NewContextService creates a ContextService. A ttl of zero or less selects
// model.DefaultContextTTL.
func NewContextService(
	apps driven.ApplicationStore,
	interviews driven.InterviewStore,
	documents driven.DocumentStore,
	issuer driven.TokenIssuer,
	verifier driven.TokenVerifier,
	ttl time.Duration,
	logger *slog.Logger,
) *ContextService {
	if ttl <= 0 {
		ttl = model.DefaultContextTTL
	}
	return &ContextService{
		apps:       apps,
		interviews: interviews,
		documents:  documents,
		issuer:     issuer,
		verifier:   verifier,
		ttl:        ttl,
		logger:     logger,
	}
}

// IssueContextToken mints a token for applicationID on behalf of caller.
// The record is re-fetched and its owner compared with caller; a record that
// is missing or owned by someone else yields driven.ErrApplicationNotFound.
func (s *ContextService) IssueContextToken(ctx context.Context, caller model.Identity, applicationID string) (model.IssuedToken, error) {
	if caller.UserID == "" {
		return model.IssuedToken{}, driven.ErrUnauthenticated
	}
	if applicationID == "" {
		return model.IssuedToken{}, driven.ErrApplicationNotFound
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("load application %s: %w", applicationID, err)
	}
	if app == nil || app.UserID != caller.UserID {
		s.logger.Info("context token refused", "application_id", applicationID, "user_id", caller.UserID)
		return model.IssuedToken{}, driven.ErrApplicationNotFound
	}

	issued, err := s.issuer.Issue(caller.UserID, app.ID, app.ShareableFields(), s.ttl)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("issue context token: %w", err)
	}

	s.logger.Debug("context token issued",
		"application_id", app.ID,
		"user_id", caller.UserID,
		"expires_at", issued.ExpiresAt,
	)
	return issued, nil
}

// Authorize verifies token and binds it to applicationID. It fails with
// ErrContextUnauthorized when the token is rejected and ErrContextForbidden
// when the token names a different application.
func (s *ContextService) Authorize(token, applicationID string) (*model.ContextClaims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Debug("context token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrContextUnauthorized, err)
	}
	if claims.ApplicationID != applicationID {
		s.logger.Info("context token presented for another application",
			"token_application_id", claims.ApplicationID,
			"requested_application_id", applicationID,
		)
		return nil, ErrContextForbidden
	}
	return claims, nil
}

// SharedApplication is everything a context token grants read access to.
type SharedApplication struct {
	Application model.Application
	Interviews  []model.Interview
	Documents   []model.Document
	ExpiresAt   time.Time
}

// LoadSharedApplication authorizes token for applicationID and loads the
// record with its interviews and documents. The record owner must still be
// the user the token was issued to.
func (s *ContextService) LoadSharedApplication(ctx context.Context, token, applicationID string) (*SharedApplication, error) {
	claims, app, err := s.loadBound(ctx, token, applicationID)
	if err != nil {
		return nil, err
	}

	interviews, err := s.interviews.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list interviews for %s: %w", app.ID, err)
	}

	documents, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", app.ID, err)
	}

	return &SharedApplication{
		Application: *app,
		Interviews:  interviews,
		Documents:   documents,
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// LoadSharedDocuments authorizes token for applicationID and returns only
// the documents attached to the record.
func (s *ContextService) LoadSharedDocuments(ctx context.Context, token, applicationID string) ([]model.Document, error) {
	_, app, err := s.loadBound(ctx, token, applicationID)
	if err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", app.ID, err)
	}
	return documents, nil
}

func (s *ContextService) loadBound(ctx context.Context, token, applicationID string) (*model.ContextClaims, *model.Application, error) {
	claims, err := s.Authorize(token, applicationID)
	if err != nil {
		return nil, nil, err
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load application %s: %w", applicationID, err)
	}
	if app == nil {
		return nil, nil, driven.ErrApplicationNotFound
	}
	if app.UserID != claims.UserID {
		s.logger.Warn("context token owner no longer owns application",
			"application_id", applicationID,
			"token_user_id", claims.UserID,
		)
		return nil, nil, ErrContextForbidden
	}
	return claims, app, nil
}
