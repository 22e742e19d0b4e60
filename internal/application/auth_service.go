package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"discord-auth-gateway/internal/domain"
	"discord-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// stateBytes is the entropy of the CSRF nonce. 24 bytes encode to 32
// URL-safe characters.
const stateBytes = 24

// AuthService drives the authorization-code-grant flow and the allow-list
// access decision. It mutates the session value it is handed; persisting
// the mutated session is the caller's job.
type AuthService struct {
	provider  ports.Provider
	allowList ports.AllowList
	logger    zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(provider ports.Provider, allowList ports.AllowList, logger zerolog.Logger) *AuthService {
	return &AuthService{
		provider:  provider,
		allowList: allowList,
		logger:    logger,
	}
}

// BeginLogin mints a CSRF nonce, stores it on the session (overwriting
// any stale value) and returns the provider authorization URL.
func (s *AuthService) BeginLogin(session *domain.Session) (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	session.CSRFState = state
	return s.provider.AuthorizeURL(state), nil
}

// CompleteLogin validates the provider callback and binds the resolved
// identity to the session. The stored nonce is consumed regardless of
// outcome, so a second callback can never match it again. On an exchange
// failure the session's credentials and identity are left untouched; on
// an identity-fetch failure the fresh credentials stay on the session but
// no identity is bound.
func (s *AuthService) CompleteLogin(ctx context.Context, session *domain.Session, state, code string) error {
	expected := session.CSRFState
	session.CSRFState = ""

	if expected == "" || state == "" || state != expected || code == "" {
		return domain.ErrCSRFMismatch
	}

	creds, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Msg("authorization code exchange failed")
		return domain.ErrExchangeFailed
	}
	session.Credentials = creds

	identity, err := s.provider.FetchIdentity(ctx, creds)
	if err != nil {
		s.logger.Warn().Err(err).Msg("identity fetch failed")
		return domain.ErrIdentityFetch
	}

	session.Identity = identity
	s.logger.Info().Str("identity", identity).Msg("login completed")
	return nil
}

// Decision is the outcome of an access check.
type Decision int

const (
	// DecisionAnonymous means the session has no bound identity and the
	// user agent should be sent through the login flow.
	DecisionAnonymous Decision = iota

	// DecisionAllowed means the identity is on the allow-list.
	DecisionAllowed

	// DecisionDenied means the identity is not on the allow-list, or the
	// list could not be consulted.
	DecisionDenied
)

// Authorize decides whether the session may pass. Any allow-list failure
// degrades to a denial, never to an allow.
func (s *AuthService) Authorize(ctx context.Context, session *domain.Session) Decision {
	if !session.Authenticated() {
		return DecisionAnonymous
	}

	ok, err := s.allowList.Contains(ctx, session.Identity)
	if err != nil {
		s.logger.Error().Err(err).Msg("allow-list lookup failed, denying access")
		return DecisionDenied
	}
	if !ok {
		return DecisionDenied
	}
	return DecisionAllowed
}
