package contextcodec_test

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/careerhub/internal/adapter/driven/contexttoken"
	"github.com/ericfisherdev/careerhub/internal/contextcodec"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

var now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func sampleEnvelope() model.TransportEnvelope {
	return model.TransportEnvelope{
		Source:         model.EnvelopeSource,
		Version:        model.EnvelopeVersion,
		Timestamp:      now.Unix(),
		UserID:         "u-1",
		ApplicationID:  "app-1",
		CompanyName:    "Acme Corp",
		PositionTitle:  "Backend Engineer",
		Credential:     "header.payload.signature",
		ExpiresAt:      now.Add(15 * time.Minute).Unix(),
		CallbackOrigin: "https://hub.example.com",
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	env := sampleEnvelope()

	encoded, err := contextcodec.Encode(env)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "=")
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.Equal(t, encoded, url.QueryEscape(encoded), "encoding must need no URL escaping")

	got := contextcodec.NewWithClock(clock).Decode(encoded)
	require.NotNil(t, got)
	assert.Equal(t, env, *got)
}

func TestDecode_AcceptsPaddedInput(t *testing.T) {
	encoded, err := contextcodec.Encode(sampleEnvelope())
	require.NoError(t, err)

	got := contextcodec.NewWithClock(clock).Decode(encoded + "==")
	assert.NotNil(t, got)
}

func TestDecode_ReturnsNilForUnusableInput(t *testing.T) {
	encode := func(mutate func(*model.TransportEnvelope)) string {
		env := sampleEnvelope()
		mutate(&env)
		s, err := contextcodec.Encode(env)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not base64", input: "%%%not-base64%%%"},
		{name: "not json", input: base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{name: "truncated", input: encode(func(*model.TransportEnvelope) {})[:20]},
		{name: "foreign source", input: encode(func(e *model.TransportEnvelope) { e.Source = "evil-hub" })},
		{name: "missing application", input: encode(func(e *model.TransportEnvelope) { e.ApplicationID = "" })},
		{name: "missing credential", input: encode(func(e *model.TransportEnvelope) { e.Credential = "" })},
		{name: "expired", input: encode(func(e *model.TransportEnvelope) { e.ExpiresAt = now.Unix() })},
	}

	codec := contextcodec.NewWithClock(clock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, codec.Decode(tt.input))
		})
	}
}

func TestSelectChannel(t *testing.T) {
	small := strings.Repeat("a", contextcodec.MaxQueryPayload)
	large := small + "a"

	assert.Equal(t, contextcodec.ChannelFragment, contextcodec.SelectChannel(small, false))
	assert.Equal(t, contextcodec.ChannelQuery, contextcodec.SelectChannel(small, true))
	assert.Equal(t, contextcodec.ChannelFragment, contextcodec.SelectChannel(large, true))
}

func TestBuildURL(t *testing.T) {
	got, err := contextcodec.BuildURL("https://tools.example.com/resume?theme=dark", "abc-_123", contextcodec.ChannelFragment)
	require.NoError(t, err)
	assert.Equal(t, "https://tools.example.com/resume?theme=dark#context=abc-_123", got)

	got, err = contextcodec.BuildURL("https://tools.example.com/resume#old", "abc", contextcodec.ChannelQuery)
	require.NoError(t, err)
	assert.Equal(t, "https://tools.example.com/resume?context=abc", got)
}

func TestBuildURL_RejectsBadDestinations(t *testing.T) {
	for _, base := range []string{"javascript:alert(1)", "/relative/path", "https://", "://nope"} {
		_, err := contextcodec.BuildURL(base, "abc", contextcodec.ChannelFragment)
		assert.Error(t, err, base)
	}
}

func TestExtract(t *testing.T) {
	got, err := contextcodec.Extract("https://tools.example.com/#context=frag")
	require.NoError(t, err)
	assert.Equal(t, "frag", got)

	got, err = contextcodec.Extract("https://tools.example.com/?context=query#other=1")
	require.NoError(t, err)
	assert.Equal(t, "query", got)

	_, err = contextcodec.Extract("https://tools.example.com/")
	require.ErrorIs(t, err, contextcodec.ErrNoContext)
}

// A 9,000 character job description rides inside the credential. The encoded
// envelope is far beyond the query budget, so it must travel in the fragment
// and come back intact.
func TestLongJobDescriptionTravelsInFragment(t *testing.T) {
	authority, err := contexttoken.NewAuthorityWithClock([]byte("0123456789abcdef0123456789abcdef"), clock)
	require.NoError(t, err)

	description := strings.Repeat("Distributed systems experience. ", 300)[:9000]
	issued, err := authority.Issue("u-1", "app-1", model.ShareableFields{
		CompanyName:    "Acme Corp",
		PositionTitle:  "Backend Engineer",
		JobDescription: description,
	}, 15*time.Minute)
	require.NoError(t, err)

	env := sampleEnvelope()
	env.Credential = issued.Token
	env.ExpiresAt = issued.ExpiresAt.Unix()

	encoded, err := contextcodec.Encode(env)
	require.NoError(t, err)
	require.Greater(t, len(encoded), contextcodec.MaxQueryPayload)

	channel := contextcodec.SelectChannel(encoded, true)
	require.Equal(t, contextcodec.ChannelFragment, channel)

	dest, err := contextcodec.BuildURL("https://tools.example.com/tailor", encoded, channel)
	require.NoError(t, err)

	extracted, err := contextcodec.Extract(dest)
	require.NoError(t, err)

	decoded := contextcodec.NewWithClock(clock).Decode(extracted)
	require.NotNil(t, decoded)
	assert.Equal(t, env, *decoded)

	claims, err := authority.Verify(decoded.Credential)
	require.NoError(t, err)
	assert.Equal(t, description, claims.Application.JobDescription)
	assert.Len(t, claims.Application.JobDescription, 9000)
}
