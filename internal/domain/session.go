package domain

import "time"

// SessionLifetime is how long a session and its cookie stay valid.
// Matches the 10-year cookie expiry the deployment hands out.
const SessionLifetime = 10 * 365 * 24 * time.Hour

// Credentials holds the token grant returned by the provider. A value is
// only ever constructed from a fully validated token response; a response
// missing any field never becomes a Credentials.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
	TokenType    string    `json:"token_type"`
}

// Session is the per-user authentication state carried between requests.
type Session struct {
	ID string `json:"id"`

	// CSRFState is the single-use nonce for an in-flight authorization
	// request. Present only between login initiation and the callback.
	CSRFState string `json:"csrf_state,omitempty"`

	// Credentials is set once a token exchange succeeds.
	Credentials *Credentials `json:"credentials,omitempty"`

	// Identity is the provider-assigned user id, set once the callback
	// completes. Identity is only meaningful alongside Credentials.
	Identity string `json:"identity,omitempty"`
}

// Authenticated reports whether the session completed a full login cycle.
// An identity without credentials does not count.
func (s *Session) Authenticated() bool {
	return s != nil && s.Identity != "" && s.Credentials != nil
}
