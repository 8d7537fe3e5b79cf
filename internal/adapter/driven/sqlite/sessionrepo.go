package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
// Only a SHA-256 digest of each session token is stored.
type SessionRepo struct {
	db  *DB
	now func() time.Time
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db, now: time.Now}
}

// Create stores or replaces the session for token.
func (r *SessionRepo) Create(ctx context.Context, token string, identity model.Identity, expiresAt time.Time) error {
	if token == "" || identity.UserID == "" {
		return errors.New("create session: token and user id are required")
	}

	const query = `INSERT OR REPLACE INTO sessions (token_hash, user_id, email, display_name, expires_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		hashToken(token), identity.UserID, identity.Email, identity.DisplayName, formatTime(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("create session for %s: %w", identity.UserID, err)
	}

	return nil
}

// Resolve returns the identity behind token, or nil, nil when the token is
// unknown or expired.
func (r *SessionRepo) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, nil
	}

	const query = `SELECT user_id, email, display_name, expires_at FROM sessions WHERE token_hash = ?`

	var identity model.Identity
	var expiresAt string
	err := r.db.Reader.QueryRowContext(ctx, query, hashToken(token)).
		Scan(&identity.UserID, &identity.Email, &identity.DisplayName, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	expiry, err := parseTime(expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse session expires_at: %w", err)
	}
	if !r.now().Before(expiry) {
		return nil, nil
	}

	identity.SessionToken = token
	return &identity, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
