package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// GenerateSignedPayload generates a signed webhook payload with HMAC-SHA256 signature
// Returns the JSON payload, signature header value, timestamp, and any error
func GenerateSignedPayload(secret string, event WebhookEvent) (payload []byte, signature string, timestamp int64, err error) {
	payload, err = json.Marshal(event)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	timestamp = time.Now().Unix()

	// Signature payload: {timestamp}.{event_id}.{json_body}
	// The timestamp defends against replay, the event ID supports client-side
	// deduplication, and the body binds the payload integrity.
	signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, event.EventID, string(payload))

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signaturePayload))
	signatureBytes := h.Sum(nil)

	// Format: "sha256=<hex_signature>"
	signature = "sha256=" + hex.EncodeToString(signatureBytes)

	return payload, signature, timestamp, nil
}

// VerifySignature verifies a webhook signature the way receiving clients do.
// Kept next to the generator so both sides of the scheme evolve together.
func VerifySignature(secret string, signature string, timestamp int64, eventID string, payload []byte) bool {
	signaturePayload := fmt.Sprintf("%d.%s.%s", timestamp, eventID, string(payload))

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signaturePayload))
	expected := "sha256=" + hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
