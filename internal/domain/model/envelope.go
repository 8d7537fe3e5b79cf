package model

import "time"

// EnvelopeSource identifies envelopes produced by this application.
const EnvelopeSource = "career-hub"

// EnvelopeVersion is the current transport envelope format.
const EnvelopeVersion = "1.0"

// TransportEnvelope wraps a context token for a single hand-off to a tool.
// UserID, ApplicationID, CompanyName and PositionTitle duplicate token claims
// so the receiving page can show a trust banner before verifying anything.
// Timestamp and ExpiresAt are Unix seconds.
type TransportEnvelope struct {
	Source         string `json:"source"`
	Version        string `json:"version"`
	Timestamp      int64  `json:"timestamp"`
	UserID         string `json:"userId"`
	ApplicationID  string `json:"applicationId"`
	CompanyName    string `json:"companyName"`
	PositionTitle  string `json:"positionTitle"`
	Credential     string `json:"credential"`
	ExpiresAt      int64  `json:"expiresAt"`
	CallbackOrigin string `json:"callbackOrigin"`
}

// Expired reports whether the envelope is no longer usable at now.
func (e TransportEnvelope) Expired(now time.Time) bool {
	return !now.Before(time.Unix(e.ExpiresAt, 0))
}
