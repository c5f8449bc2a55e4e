package kickbase

import "time"

type loginRequest struct {
	Email    string         `json:"em"`
	Password string         `json:"pass"`
	Ext      bool           `json:"ext"`
	Loy      bool           `json:"loy"`
	Rep      map[string]any `json:"rep"`
}

type loginResponse struct {
	Token     string `json:"tkn"`
	ExpiresAt string `json:"tknex"`
}

// LoginResult is the outcome of a successful login exchange.
// ExpiresAt is zero when the server did not send a parseable expiry.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}
