// Package linkcodec turns small JSON payloads into URL-fragment-safe share
// tokens and back. It is the fallback transport used when no shared backend
// write is available: a quiz snapshot or a single result envelope is encoded
// into a token, carried out-of-band (typically after the '#' of a URL), and
// decoded on the other side.
package linkcodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// encoding is base64 without padding over the URL-safe alphabet, so a token
// survives inside a URL fragment with no additional escaping.
var encoding = base64.RawURLEncoding

// DecodeError reports a malformed or foreign token. Callers treat it as
// "invalid link"; the token itself is unusable and there is nothing to retry.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid link token: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid link token: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes payload to JSON and wraps it in a URL-safe token.
// Decode is its exact left inverse for any payload Encode accepts.
func Encode(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode link token: %w", err)
	}
	return encoding.EncodeToString(raw), nil
}

// Decode unwraps a token back into its raw JSON payload. It does not validate
// which payload shape it received; callers inspect the returned fields and
// fail with a domain-specific message when required fields are absent.
func Decode(token string) (json.RawMessage, error) {
	if token == "" {
		return nil, &DecodeError{Reason: "empty token"}
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return nil, &DecodeError{Reason: "not base64url text", Err: err}
	}
	if !json.Valid(raw) {
		return nil, &DecodeError{Reason: "payload is not valid JSON"}
	}
	return json.RawMessage(raw), nil
}

// DecodeInto decodes a token directly into dest. The payload is rejected as a
// whole on any JSON error; dest is never left partially populated on success
// reporting.
func DecodeInto(token string, dest any) error {
	raw, err := Decode(token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &DecodeError{Reason: "payload does not match expected shape", Err: err}
	}
	return nil
}
