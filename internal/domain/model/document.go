package model

import "time"

// Document is a file attached to an Application (resume, cover letter, ...).
// URL points at the hosted blob; the file itself is never stored here.
type Document struct {
	ID            string
	ApplicationID string
	UserID        string
	Name          string
	Kind          DocumentKind
	URL           string
	CreatedAt     time.Time
}
