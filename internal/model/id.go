package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SHA256Text returns the hex sha256 digest of a string.
func SHA256Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// StableID derives a deterministic id from a payload. The payload is
// marshaled as canonical JSON (map keys sorted, compact) so identical
// payloads always produce the same id across runs and processes.
func StableID(prefix string, payload map[string]any) string {
	canon, err := json.Marshal(payload)
	if err != nil {
		// Payloads are built from plain strings, slices and maps; marshal
		// cannot fail for those. Fall back to a digest of the error string
		// rather than panicking.
		canon = []byte(err.Error())
	}
	return fmt.Sprintf("%s_%s", prefix, SHA256Text(string(canon))[:16])
}
