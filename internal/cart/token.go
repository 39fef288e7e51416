package cart

import (
	"crypto/rand"
	"encoding/hex"
)

// newToken mints the opaque key handed to anonymous order-form visitors.
// The crt_ prefix makes stray tokens recognizable in logs and bug reports.
func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "crt_" + hex.EncodeToString(b), nil
}
