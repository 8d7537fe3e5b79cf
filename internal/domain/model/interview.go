package model

import "time"

// Interview is a scheduled or completed interview round for an Application.
type Interview struct {
	ID            string
	ApplicationID string
	UserID        string
	Round         string
	Interviewer   string
	ScheduledAt   time.Time
	Notes         string
}
