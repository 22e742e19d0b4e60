package domain

import "errors"

var (
	// ErrCSRFMismatch indicates the callback state did not match the
	// nonce stored on the session, or a required parameter was missing.
	ErrCSRFMismatch = errors.New("oauth2 state mismatch")

	// ErrExchangeFailed covers transport failures, non-2xx responses and
	// schema-invalid bodies from the provider token endpoint. Callers
	// cannot distinguish between them.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrIdentityFetch indicates the provider identity resource could not
	// be resolved with the granted access token.
	ErrIdentityFetch = errors.New("identity fetch failed")
)
