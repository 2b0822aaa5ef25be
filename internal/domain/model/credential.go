package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Credential is an opaque bearer-style token identifying one account to the
// remote task service. The value is passed through untouched.
type Credential string

// Fingerprint returns a short, stable, non-reversible identifier for the
// credential, suitable for logs and the attempt journal.
func (c Credential) Fingerprint() string {
	sum := sha256.Sum256([]byte(c))
	return hex.EncodeToString(sum[:6])
}

// String masks the credential so it never leaks through %v or slog attrs.
func (c Credential) String() string {
	return "credential:" + c.Fingerprint()
}
