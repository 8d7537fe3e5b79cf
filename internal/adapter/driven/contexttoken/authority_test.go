package contexttoken_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/careerhub/internal/adapter/driven/contexttoken"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	issueTime  = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
)

// fakeClock is a settable time source shared by an Authority under test.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newAuthority(t *testing.T) (*contexttoken.Authority, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: issueTime}
	a, err := contexttoken.NewAuthorityWithClock(testSecret, clock.Now)
	require.NoError(t, err)
	return a, clock
}

func sampleFields() model.ShareableFields {
	return model.ShareableFields{
		CompanyName:    "Acme Corp",
		PositionTitle:  "Backend Engineer",
		JobDescription: "Design and run services.",
		Location:       "Berlin",
		SalaryRange:    "80k-100k EUR",
		WorkMode:       model.WorkModeHybrid,
		Source:         "referral",
		DateApplied:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewAuthority_RejectsMissingSecret(t *testing.T) {
	for _, secret := range [][]byte{nil, {}, []byte("short")} {
		a, err := contexttoken.NewAuthority(secret)
		assert.Nil(t, a)
		require.ErrorIs(t, err, contexttoken.ErrSecretTooShort)
	}
}

func TestIssueThenVerify(t *testing.T) {
	a, _ := newAuthority(t)

	issued, err := a.Issue("u-1", "app-1", sampleFields(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, issueTime.Add(15*time.Minute), issued.ExpiresAt)
	assert.Equal(t, 2, strings.Count(issued.Token, "."), "token should be a compact JWS")

	claims, err := a.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "app-1", claims.ApplicationID)
	assert.Equal(t, model.ScopeRead, claims.Scope)
	assert.Equal(t, issueTime, claims.IssuedAt)
	assert.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt))
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, sampleFields(), claims.Application)
}

func TestIssue_DefaultsTTL(t *testing.T) {
	a, _ := newAuthority(t)

	issued, err := a.Issue("u-1", "app-1", sampleFields(), 0)
	require.NoError(t, err)
	assert.Equal(t, issueTime.Add(model.DefaultContextTTL), issued.ExpiresAt)
}

func TestIssue_RequiresCallerAndApplication(t *testing.T) {
	a, _ := newAuthority(t)

	_, err := a.Issue("", "app-1", sampleFields(), 0)
	require.Error(t, err)

	_, err = a.Issue("u-1", "", sampleFields(), 0)
	require.Error(t, err)
}

func TestVerify_ExpiryWindow(t *testing.T) {
	a, clock := newAuthority(t)

	issued, err := a.Issue("u-1", "app-1", sampleFields(), 15*time.Minute)
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = a.Verify(issued.Token)
	require.NoError(t, err, "token must still verify at issuedAt+14m")

	clock.Advance(2 * time.Minute)
	claims, err := a.Verify(issued.Token)
	assert.Nil(t, claims)
	require.ErrorIs(t, err, driven.ErrTokenExpired)
}

func TestVerify_ValidAtExactExpiry(t *testing.T) {
	a, clock := newAuthority(t)

	issued, err := a.Issue("u-1", "app-1", sampleFields(), 15*time.Minute)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	claims, err := a.Verify(issued.Token)
	require.NoError(t, err, "token must verify when now equals expiresAt")
	assert.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt))

	clock.Advance(time.Second)
	_, err = a.Verify(issued.Token)
	require.ErrorIs(t, err, driven.ErrTokenExpired)
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	a, _ := newAuthority(t)

	issued, err := a.Issue("u-1", "app-1", sampleFields(), 0)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":           "career-hub",
		"userId":        "u-2",
		"applicationId": "app-1",
		"scope":         "read",
		"iat":           issueTime.Unix(),
		"exp":           issueTime.Add(time.Hour).Unix(),
	}).SigningString()
	require.NoError(t, err)

	// Forged payload with the original signature.
	tampered := forged + "." + parts[2]

	_, err = a.Verify(tampered)
	require.ErrorIs(t, err, driven.ErrTokenInvalid)
}

func TestVerify_RejectsOtherSecret(t *testing.T) {
	a, _ := newAuthority(t)
	other, err := contexttoken.NewAuthorityWithClock([]byte("ffffffffffffffffffffffffffffffff"), func() time.Time { return issueTime })
	require.NoError(t, err)

	issued, err := other.Issue("u-1", "app-1", sampleFields(), 0)
	require.NoError(t, err)

	_, err = a.Verify(issued.Token)
	require.ErrorIs(t, err, driven.ErrTokenInvalid)
}

func TestVerify_RejectsMalformedAndUnsigned(t *testing.T) {
	a, _ := newAuthority(t)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss":           "career-hub",
		"userId":        "u-1",
		"applicationId": "app-1",
		"scope":         "read",
		"iat":           issueTime.Unix(),
		"exp":           issueTime.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", "a.b.c", unsigned} {
		claims, err := a.Verify(token)
		assert.Nil(t, claims)
		require.ErrorIs(t, err, driven.ErrTokenInvalid, "token %q", token)
	}
}

func TestVerify_RejectsIncompleteClaims(t *testing.T) {
	a, _ := newAuthority(t)

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss":           "career-hub",
			"userId":        "u-1",
			"applicationId": "app-1",
			"scope":         "read",
			"iat":           issueTime.Unix(),
			"exp":           issueTime.Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{name: "missing userId", mutate: func(c jwt.MapClaims) { delete(c, "userId") }},
		{name: "missing applicationId", mutate: func(c jwt.MapClaims) { delete(c, "applicationId") }},
		{name: "write scope", mutate: func(c jwt.MapClaims) { c["scope"] = "write" }},
		{name: "missing exp", mutate: func(c jwt.MapClaims) { delete(c, "exp") }},
		{name: "missing iat", mutate: func(c jwt.MapClaims) { delete(c, "iat") }},
		{name: "foreign issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "someone-else" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
			require.NoError(t, err)

			_, err = a.Verify(token)
			require.ErrorIs(t, err, driven.ErrTokenInvalid)
		})
	}
}

func TestIssue_LongJobDescriptionSurvives(t *testing.T) {
	a, _ := newAuthority(t)

	fields := sampleFields()
	fields.JobDescription = strings.Repeat("x", 9000)

	issued, err := a.Issue("u-1", "app-1", fields, 0)
	require.NoError(t, err)

	claims, err := a.Verify(issued.Token)
	require.NoError(t, err)
	assert.Len(t, claims.Application.JobDescription, 9000)
}
