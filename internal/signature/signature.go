// Package signature verifies that inbound webhook requests were signed by
// Slack with the app's signing secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	version = "v0"

	// Slack rejects anything outside a five minute window to limit replay.
	maxClockSkew = 5 * time.Minute
)

var (
	ErrMissingSecret    = errors.New("signing secret is not configured")
	ErrMissingHeaders   = errors.New("signature headers are missing")
	ErrInvalidTimestamp = errors.New("request timestamp is invalid")
	ErrStaleTimestamp   = errors.New("request timestamp is outside the replay window")
	ErrMismatch         = errors.New("signature mismatch")
)

type Verifier struct {
	Secret string
	Now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: strings.TrimSpace(secret)}
}

// Verify returns nil when the supplied signature matches the HMAC of the raw
// request body. The comparison is constant time.
func (v *Verifier) Verify(body []byte, timestamp, sig string) error {
	if v == nil || strings.TrimSpace(v.Secret) == "" {
		return ErrMissingSecret
	}
	timestamp = strings.TrimSpace(timestamp)
	sig = strings.TrimSpace(sig)
	if timestamp == "" || sig == "" {
		return ErrMissingHeaders
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	now := v.now()
	age := now.Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(maxClockSkew/time.Second) {
		return ErrStaleTimestamp
	}
	expected := v.expected(timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrMismatch
	}
	return nil
}

func (v *Verifier) expected(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(v.Secret))
	mac.Write([]byte(version + ":" + timestamp + ":"))
	mac.Write(body)
	return version + "=" + hex.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}
