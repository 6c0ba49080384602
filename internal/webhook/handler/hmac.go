package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"uplift/internal/webhook/models"
)

// HMACVerifier is the reference EventVerifier: the signature is the hex
// HMAC-SHA256 of the raw payload under a shared secret. A provider SDK
// verifier slots in behind the same interface.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier with the shared signing secret.
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

// VerifyAndParse checks the payload signature and decodes the event.
func (v *HMACVerifier) VerifyAndParse(payload []byte, signature string) (*models.Event, error) {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("malformed signature: %w", err)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return nil, errors.New("signature mismatch")
	}

	var event models.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, errors.New("event is missing id or type")
	}
	return &event, nil
}

// Sign computes the signature for payload. Exported for tests and for the
// local event replay tool.
func (v *HMACVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
