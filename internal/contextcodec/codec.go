// Package contextcodec converts transport envelopes to and from URL-safe
// strings and attaches them to destination URLs.
package contextcodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

// ParamName is the key carrying the encoded envelope in a fragment or query.
const ParamName = "context"

// MaxQueryPayload is the largest encoded envelope placed in a query string.
// Proxies and servers commonly truncate URLs near 2KB; fragments are never
// sent to a server and tolerate far larger payloads.
const MaxQueryPayload = 2048

// Channel is the part of a URL an encoded envelope travels in.
type Channel int

const (
	ChannelFragment Channel = iota
	ChannelQuery
)

func (c Channel) String() string {
	switch c {
	case ChannelFragment:
		return "fragment"
	case ChannelQuery:
		return "query"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Codec decodes envelopes against a clock. Encoding is clock-free; see Encode.
type Codec struct {
	now func() time.Time
}

// New creates a Codec using the wall clock.
func New() *Codec {
	return &Codec{now: time.Now}
}

// NewWithClock creates a Codec that reads the current time from now.
func NewWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Encode serializes env as unpadded URL-safe base64 of its JSON form. The
// result needs no further escaping inside a URL.
func Encode(env model.TransportEnvelope) (string, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode and validates the result. It returns nil for
// anything unusable (corrupt, truncated, foreign, incomplete or expired) so
// callers can fall back to a launch without context.
func (c *Codec) Decode(s string) *model.TransportEnvelope {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil
	}

	var env model.TransportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	if env.Source != model.EnvelopeSource || env.ApplicationID == "" || env.Credential == "" {
		return nil
	}
	if env.Expired(c.now()) {
		return nil
	}

	return &env
}

// SelectChannel picks where an encoded envelope travels. The fragment is the
// default; the query string is used only on request and only when the
// payload fits MaxQueryPayload.
func SelectChannel(encoded string, preferQuery bool) Channel {
	if preferQuery && len(encoded) <= MaxQueryPayload {
		return ChannelQuery
	}
	return ChannelFragment
}

// BuildURL attaches encoded to base in the given channel. base must be an
// absolute http or https URL; its existing query is preserved.
func BuildURL(base, encoded string, ch Channel) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse destination %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("destination %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("destination %q: missing host", base)
	}

	switch ch {
	case ChannelFragment:
		u.Fragment = ParamName + "=" + encoded
		u.RawFragment = ""
	case ChannelQuery:
		q := u.Query()
		q.Set(ParamName, encoded)
		u.RawQuery = q.Encode()
		u.Fragment = ""
		u.RawFragment = ""
	default:
		return "", fmt.Errorf("unsupported channel %s", ch)
	}

	return u.String(), nil
}

// ErrNoContext is returned by Extract when a URL carries no envelope.
var ErrNoContext = errors.New("no context in url")

// Extract returns the encoded envelope carried by rawURL, looking at the
// fragment first and the query string second.
func Extract(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	if u.Fragment != "" {
		if values, err := url.ParseQuery(u.Fragment); err == nil {
			if v := values.Get(ParamName); v != "" {
				return v, nil
			}
		}
	}

	if v := u.Query().Get(ParamName); v != "" {
		return v, nil
	}

	return "", ErrNoContext
}
