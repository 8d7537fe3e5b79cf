package model

// Identity is a caller verified by the primary authentication flow.
// SessionToken is the bearer credential that flow handed out; it is only
// forwarded to the host's own issuance endpoint, never to a tool.
type Identity struct {
	UserID       string
	Email        string
	DisplayName  string
	SessionToken string
}
