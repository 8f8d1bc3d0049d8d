package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// EventSub header names.
const (
	HeaderMessageID        = "Twitch-Eventsub-Message-Id"
	HeaderMessageTimestamp = "Twitch-Eventsub-Message-Timestamp"
	HeaderMessageSignature = "Twitch-Eventsub-Message-Signature"
	HeaderMessageType      = "Twitch-Eventsub-Message-Type"
)

const (
	signaturePrefix = "sha256="

	// maxMessageAge is Twitch's documented replay window.
	maxMessageAge = 10 * time.Minute
)

var (
	ErrBadSignature         = errors.New("webhook signature mismatch")
	ErrStaleTimestamp       = errors.New("webhook timestamp too old")
	ErrUnparseableTimestamp = errors.New("webhook timestamp not RFC3339")
)

// VerifySignature checks the EventSub HMAC. The signed message is the
// concatenation of message ID, timestamp, and raw body; the header carries
// its hex digest behind a "sha256=" prefix.
func VerifySignature(secret, messageID, timestamp string, body []byte, signatureHeader string) error {
	encoded, ok := strings.CutPrefix(signatureHeader, signaturePrefix)
	if !ok {
		return ErrBadSignature
	}

	provided, err := hex.DecodeString(encoded)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID))
	mac.Write([]byte(timestamp))
	mac.Write(body)

	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

// CheckFreshness validates the timestamp header against the replay window.
// An unparseable timestamp and a stale one are distinct failures: the former
// is a client error, the latter is acknowledged and ignored.
func CheckFreshness(timestamp string, now time.Time) error {
	sent, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return ErrUnparseableTimestamp
	}
	if sent.Add(maxMessageAge).Before(now) {
		return ErrStaleTimestamp
	}
	return nil
}
