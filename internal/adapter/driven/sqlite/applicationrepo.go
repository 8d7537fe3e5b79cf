package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ApplicationStore = (*ApplicationRepo)(nil)

// ApplicationRepo is the SQLite implementation of the ApplicationStore port interface.
type ApplicationRepo struct {
	db *DB
}

// NewApplicationRepo creates a new ApplicationRepo backed by the given DB.
func NewApplicationRepo(db *DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

const applicationColumns = `id, user_id, company_name, position_title, job_description, location,
	salary_range, work_mode, source, status, notes, date_applied, created_at, updated_at`

// Create inserts a new application. CreatedAt and UpdatedAt default to now.
func (r *ApplicationRepo) Create(ctx context.Context, app model.Application) error {
	const query = `INSERT INTO applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	createdAt := app.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := app.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	status := app.Status
	if status == "" {
		status = model.ApplicationStatusApplied
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		app.ID, app.UserID, app.CompanyName, app.PositionTitle, app.JobDescription, app.Location,
		app.SalaryRange, string(app.WorkMode), app.Source, string(status), app.Notes,
		formatNullableTime(app.DateApplied), formatTime(createdAt), formatTime(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("create application %s: %w", app.ID, err)
	}

	return nil
}

// GetByID retrieves an application by id. Returns nil, nil if it does not exist.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	app, err := scanApplication(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}

	return app, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(s scanner) (*model.Application, error) {
	var app model.Application
	var workMode, status string
	var dateApplied sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.PositionTitle, &app.JobDescription, &app.Location,
		&app.SalaryRange, &workMode, &app.Source, &status, &app.Notes, &dateApplied, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.WorkMode = model.WorkMode(workMode)
	app.Status = model.ApplicationStatus(status)

	if dateApplied.Valid && dateApplied.String != "" {
		app.DateApplied, err = parseTime(dateApplied.String)
		if err != nil {
			return nil, fmt.Errorf("parse date_applied: %w", err)
		}
	}
	if app.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if app.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &app, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
