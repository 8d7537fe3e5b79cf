package model

import "time"

// Scope is the capability class granted by a context token.
type Scope string

// ScopeRead grants read access to exactly one application record.
const ScopeRead Scope = "read"

// DefaultContextTTL is the lifetime of a context token when none is given.
const DefaultContextTTL = 15 * time.Minute

// ContextClaims are the verified contents of a context token.
type ContextClaims struct {
	TokenID       string
	UserID        string
	ApplicationID string
	Scope         Scope
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Application   ShareableFields
}

// IssuedToken is a freshly minted context token, the user it was issued to
// and its expiry.
type IssuedToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
