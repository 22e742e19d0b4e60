package ports

import (
	"context"

	"discord-auth-gateway/internal/domain"
)

// SessionStore defines the interface for session persistence. Get on an
// unknown id returns a fresh session for that id, never an error.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

// AllowList defines the point lookup over the set of identities permitted
// to use the protected resource. Absence of a record means denial.
type AllowList interface {
	Contains(ctx context.Context, identity string) (bool, error)
}

// Provider defines the interface to the OAuth2 identity provider the
// gateway fronts.
type Provider interface {
	// AuthorizeURL builds the authorization endpoint URL the user agent
	// is redirected to at the start of the flow.
	AuthorizeURL(state string) string

	// ExchangeCode trades an authorization code for credentials.
	ExchangeCode(ctx context.Context, code string) (*domain.Credentials, error)

	// Refresh trades the refresh token of an existing grant for fresh
	// credentials.
	Refresh(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error)

	// FetchIdentity resolves the provider user id for the given
	// credentials, presented as a bearer token.
	FetchIdentity(ctx context.Context, creds *domain.Credentials) (string, error)
}
