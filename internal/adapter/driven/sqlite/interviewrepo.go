package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InterviewStore = (*InterviewRepo)(nil)

// InterviewRepo is the SQLite implementation of the InterviewStore port interface.
type InterviewRepo struct {
	db *DB
}

// NewInterviewRepo creates a new InterviewRepo backed by the given DB.
func NewInterviewRepo(db *DB) *InterviewRepo {
	return &InterviewRepo{db: db}
}

// Create inserts an interview. The parent application must exist.
func (r *InterviewRepo) Create(ctx context.Context, iv model.Interview) error {
	const query = `INSERT INTO interviews (id, application_id, user_id, round, interviewer, scheduled_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		iv.ID, iv.ApplicationID, iv.UserID, iv.Round, iv.Interviewer, formatTime(iv.ScheduledAt), iv.Notes,
	)
	if err != nil {
		return fmt.Errorf("create interview %s: %w", iv.ID, err)
	}

	return nil
}

// ListByApplication returns the interviews of an application in schedule order.
func (r *InterviewRepo) ListByApplication(ctx context.Context, applicationID string) ([]model.Interview, error) {
	const query = `SELECT id, application_id, user_id, round, interviewer, scheduled_at, notes
		FROM interviews WHERE application_id = ? ORDER BY scheduled_at`

	rows, err := r.db.Reader.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list interviews for %s: %w", applicationID, err)
	}
	defer rows.Close()

	interviews := []model.Interview{}
	for rows.Next() {
		var iv model.Interview
		var scheduledAt string
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.UserID, &iv.Round, &iv.Interviewer, &scheduledAt, &iv.Notes); err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		if iv.ScheduledAt, err = parseTime(scheduledAt); err != nil {
			return nil, fmt.Errorf("parse scheduled_at for interview %s: %w", iv.ID, err)
		}
		interviews = append(interviews, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interviews: %w", err)
	}

	return interviews, nil
}
