// Package contexttoken implements the context token ports with HS256 JWTs.
package contexttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.TokenIssuer   = (*Authority)(nil)
	_ driven.TokenVerifier = (*Authority)(nil)
)

// MinSecretLength is the shortest signing secret NewAuthority accepts.
// HS256 keys shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// tokenIssuer is the "iss" claim of every token minted here.
const tokenIssuer = "career-hub"

const dateLayout = "2006-01-02"

// expiryLeeway keeps a token valid through the whole second named by its
// exp claim, so a token verifies while now <= expiresAt.
const expiryLeeway = time.Second

// ErrSecretTooShort is returned when the signing secret is missing or shorter
// than MinSecretLength.
var ErrSecretTooShort = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)

// Authority mints and verifies context tokens with a single process-wide
// secret. It holds no mutable state and is safe for concurrent use.
type Authority struct {
	secret []byte
	now    func() time.Time
}

// NewAuthority creates an Authority. It refuses to exist without a usable
// secret so a misconfigured server never signs with an empty key.
func NewAuthority(secret []byte) (*Authority, error) {
	return NewAuthorityWithClock(secret, time.Now)
}

// NewAuthorityWithClock creates an Authority that reads the current time from now.
func NewAuthorityWithClock(secret []byte, now func() time.Time) (*Authority, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Authority{secret: key, now: now}, nil
}

// claims is the JWT payload. Field names are part of the wire format read by
// external tools.
type claims struct {
	jwt.RegisteredClaims
	UserID        string      `json:"userId"`
	ApplicationID string      `json:"applicationId"`
	Scope         model.Scope `json:"scope"`
	Application   snapshot    `json:"application"`
}

type snapshot struct {
	CompanyName    string `json:"companyName"`
	PositionTitle  string `json:"positionTitle"`
	JobDescription string `json:"jobDescription,omitempty"`
	Location       string `json:"location,omitempty"`
	SalaryRange    string `json:"salaryRange,omitempty"`
	WorkMode       string `json:"workMode,omitempty"`
	Source         string `json:"source,omitempty"`
	DateApplied    string `json:"dateApplied,omitempty"`
}

// Issue mints a read-scoped token for applicationID owned by callerID.
// Ownership must already have been checked by the caller.
func (a *Authority) Issue(callerID, applicationID string, fields model.ShareableFields, ttl time.Duration) (model.IssuedToken, error) {
	if callerID == "" || applicationID == "" {
		return model.IssuedToken{}, errors.New("issue context token: caller and application are required")
	}
	if ttl <= 0 {
		ttl = model.DefaultContextTTL
	}

	now := a.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   callerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:        callerID,
		ApplicationID: applicationID,
		Scope:         model.ScopeRead,
		Application:   toSnapshot(fields),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("sign context token: %w", err)
	}

	return model.IssuedToken{Token: signed, UserID: callerID, ExpiresAt: c.ExpiresAt.Time}, nil
}

// Verify checks the signature, the expiry and the presence of every required
// claim. Expired tokens yield driven.ErrTokenExpired; every other failure
// yields driven.ErrTokenInvalid.
func (a *Authority) Verify(token string) (*model.ContextClaims, error) {
	if token == "" {
		return nil, driven.ErrTokenInvalid
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, a.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithLeeway(expiryLeeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, driven.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", driven.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, driven.ErrTokenInvalid
	}

	if c.UserID == "" || c.ApplicationID == "" || c.Scope != model.ScopeRead {
		return nil, fmt.Errorf("%w: missing required claims", driven.ErrTokenInvalid)
	}
	if c.IssuedAt == nil || !c.ExpiresAt.After(c.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: expiry not after issuance", driven.ErrTokenInvalid)
	}

	fields, err := fromSnapshot(c.Application)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrTokenInvalid, err)
	}

	return &model.ContextClaims{
		TokenID:       c.ID,
		UserID:        c.UserID,
		ApplicationID: c.ApplicationID,
		Scope:         c.Scope,
		IssuedAt:      c.IssuedAt.Time,
		ExpiresAt:     c.ExpiresAt.Time,
		Application:   fields,
	}, nil
}

func (a *Authority) keyFunc(*jwt.Token) (any, error) {
	return a.secret, nil
}

func toSnapshot(f model.ShareableFields) snapshot {
	s := snapshot{
		CompanyName:    f.CompanyName,
		PositionTitle:  f.PositionTitle,
		JobDescription: f.JobDescription,
		Location:       f.Location,
		SalaryRange:    f.SalaryRange,
		WorkMode:       string(f.WorkMode),
		Source:         f.Source,
	}
	if !f.DateApplied.IsZero() {
		s.DateApplied = f.DateApplied.UTC().Format(dateLayout)
	}
	return s
}

func fromSnapshot(s snapshot) (model.ShareableFields, error) {
	f := model.ShareableFields{
		CompanyName:    s.CompanyName,
		PositionTitle:  s.PositionTitle,
		JobDescription: s.JobDescription,
		Location:       s.Location,
		SalaryRange:    s.SalaryRange,
		WorkMode:       model.WorkMode(s.WorkMode),
		Source:         s.Source,
	}
	if s.DateApplied != "" {
		d, err := time.Parse(dateLayout, s.DateApplied)
		if err != nil {
			return model.ShareableFields{}, fmt.Errorf("parse dateApplied: %w", err)
		}
		f.DateApplied = d
	}
	return f, nil
}
