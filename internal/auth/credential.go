// Package auth produces the bearer credential used for every upstream call.
package auth

import "time"

// Source names where a credential came from.
type Source string

const (
	SourceConfig Source = "config"
	SourceLogin  Source = "login"
)

// Credential is an opaque bearer token. Expiry is informational only: a stale
// token is discovered by the first rejected call.
type Credential struct {
	Token     string
	ExpiresAt time.Time
	Source    Source
	// Persisted is set when a freshly issued token was written to the env file.
	Persisted bool
}

// Redacted renders the token safe for logs.
func (c Credential) Redacted() string {
	if len(c.Token) <= 8 {
		return "****"
	}
	return c.Token[:4] + "****" + c.Token[len(c.Token)-4:]
}
