package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// --- Mock implementations shared by the application tests ---

type mockApplicationStore struct {
	apps map[string]model.Application
	err  error
}

func newMockApplicationStore(apps ...model.Application) *mockApplicationStore {
	m := &mockApplicationStore{apps: make(map[string]model.Application)}
	for _, a := range apps {
		m.apps[a.ID] = a
	}
	return m
}

func (m *mockApplicationStore) Create(_ context.Context, app model.Application) error {
	m.apps[app.ID] = app
	return nil
}

func (m *mockApplicationStore) GetByID(_ context.Context, id string) (*model.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	app, ok := m.apps[id]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

type mockInterviewStore struct {
	interviews []model.Interview
}

func (m *mockInterviewStore) Create(_ context.Context, iv model.Interview) error {
	m.interviews = append(m.interviews, iv)
	return nil
}

func (m *mockInterviewStore) ListByApplication(_ context.Context, applicationID string) ([]model.Interview, error) {
	var out []model.Interview
	for _, iv := range m.interviews {
		if iv.ApplicationID == applicationID {
			out = append(out, iv)
		}
	}
	return out, nil
}

type mockDocumentStore struct {
	documents []model.Document
	err       error
}

func (m *mockDocumentStore) Create(_ context.Context, doc model.Document) error {
	m.documents = append(m.documents, doc)
	return nil
}

func (m *mockDocumentStore) ListByApplication(_ context.Context, applicationID string) ([]model.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Document
	for _, d := range m.documents {
		if d.ApplicationID == applicationID {
			out = append(out, d)
		}
	}
	return out, nil
}

type mockContextIssuer struct {
	mu      sync.Mutex
	calls   []string
	token   model.IssuedToken
	err     error
	blockOn chan struct{}
}

func (m *mockContextIssuer) IssueContextToken(ctx context.Context, caller model.Identity, applicationID string) (model.IssuedToken, error) {
	m.mu.Lock()
	m.calls = append(m.calls, caller.UserID+"/"+applicationID)
	m.mu.Unlock()

	if m.blockOn != nil {
		select {
		case <-m.blockOn:
		case <-ctx.Done():
			return model.IssuedToken{}, ctx.Err()
		}
	}
	if m.err != nil {
		return model.IssuedToken{}, m.err
	}
	return m.token, nil
}

func (m *mockContextIssuer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockURLOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
	// checkCtx makes Open fail on a done context, like the browser opener.
	checkCtx bool
}

func (m *mockURLOpener) Open(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.checkCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	m.opened = append(m.opened, url)
	return nil
}

func (m *mockURLOpener) urls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

var errStoreDown = errors.New("store unavailable")

// --- Helper functions ---

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func makeApplication(id, userID string) model.Application {
	return model.Application{
		ID:             id,
		UserID:         userID,
		CompanyName:    "Acme Corp",
		PositionTitle:  "Backend Engineer",
		JobDescription: "**Go** and SQL",
		Location:       "Berlin",
		WorkMode:       model.WorkModeHybrid,
		Status:         model.ApplicationStatusInterviewing,
		Notes:          "Met the hiring manager at a meetup.",
		DateApplied:    time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		UpdatedAt:      testNow.Add(-time.Hour),
	}
}
