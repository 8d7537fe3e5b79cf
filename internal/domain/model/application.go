// Package model holds the domain types shared by every layer.
package model

import "time"

// Application is a job application record. UserID is the owner and is the
// only identity allowed to share the record with an external tool.
type Application struct {
	ID             string
	UserID         string
	CompanyName    string
	PositionTitle  string
	JobDescription string
	Location       string
	SalaryRange    string
	WorkMode       WorkMode
	Source         string
	Status         ApplicationStatus
	Notes          string
	DateApplied    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ShareableFields is the snapshot of an Application embedded in a context
// token. Notes and status are left out to keep the token small; tools that
// need them fetch the full record through the verification endpoint.
type ShareableFields struct {
	CompanyName    string
	PositionTitle  string
	JobDescription string
	Location       string
	SalaryRange    string
	WorkMode       WorkMode
	Source         string
	DateApplied    time.Time
}

// ShareableFields copies the fields of a that may be handed to an external tool.
func (a Application) ShareableFields() ShareableFields {
	return ShareableFields{
		CompanyName:    a.CompanyName,
		PositionTitle:  a.PositionTitle,
		JobDescription: a.JobDescription,
		Location:       a.Location,
		SalaryRange:    a.SalaryRange,
		WorkMode:       a.WorkMode,
		Source:         a.Source,
		DateApplied:    a.DateApplied,
	}
}
