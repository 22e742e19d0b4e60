package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"discord-auth-gateway/internal/domain"
	"discord-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const (
	defaultAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	defaultTokenURL     = "https://discord.com/api/oauth2/token"
	defaultUserURL      = "https://discord.com/api/users/@me"
)

type client struct {
	clientID     string
	clientSecret string
	scope        string
	redirectURI  string
	authorizeURL string
	tokenURL     string
	userURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// Option overrides a client default.
type Option func(*client)

// WithEndpoints points the client at alternative provider endpoints.
func WithEndpoints(authorizeURL, tokenURL, userURL string) Option {
	return func(c *client) {
		c.authorizeURL = authorizeURL
		c.tokenURL = tokenURL
		c.userURL = userURL
	}
}

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Discord provider adapter.
func NewClient(clientID, clientSecret, scope, redirectURI string, logger zerolog.Logger, opts ...Option) ports.Provider {
	c := &client{
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		redirectURI:  redirectURI,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		userURL:      defaultUserURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizeURL builds the authorization endpoint URL for the given state.
// Discord expects redirect_uri here under the same name the token exchange
// uses (RFC 6749 §4.1.1).
func (c *client) AuthorizeURL(state string) string {
	values := url.Values{}
	values.Set("response_type", "code")
	values.Set("client_id", c.clientID)
	values.Set("redirect_uri", c.redirectURI)
	values.Set("scope", c.scope)
	values.Set("state", state)
	return c.authorizeURL + "?" + values.Encode()
}

// ExchangeCode trades an authorization code for credentials.
func (c *client) ExchangeCode(ctx context.Context, code string) (*domain.Credentials, error) {
	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", c.redirectURI)
	return c.exchange(ctx, values)
}

// Refresh trades the refresh token of an existing grant for fresh
// credentials.
func (c *client) Refresh(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("refresh_token", creds.RefreshToken)
	return c.exchange(ctx, values)
}

// tokenResponse is the raw token endpoint body. Every field is required;
// a body missing any of them is not a valid grant.
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	ExpiresIn    float64 `json:"expires_in"`
	RefreshToken string  `json:"refresh_token"`
	Scope        string  `json:"scope"`
	TokenType    string  `json:"token_type"`
}

// credentials validates the response and converts the relative expiry to
// an absolute timestamp anchored at now.
func (t *tokenResponse) credentials(now time.Time) (*domain.Credentials, error) {
	if t.AccessToken == "" || t.ExpiresIn == 0 || t.RefreshToken == "" || t.Scope == "" || t.TokenType == "" {
		return nil, domain.ErrExchangeFailed
	}
	return &domain.Credentials{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(t.ExpiresIn * float64(time.Second))),
		Scope:        t.Scope,
		TokenType:    t.TokenType,
	}, nil
}

// exchange POSTs a form-encoded grant to the token endpoint. A single
// attempt is made; transport failures, non-2xx statuses and invalid
// bodies all collapse into ErrExchangeFailed.
func (c *client) exchange(ctx context.Context, grant url.Values) (*domain.Credentials, error) {
	grant.Set("client_id", c.clientID)
	grant.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(grant.Encode()))
	if err != nil {
		return nil, domain.ErrExchangeFailed
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("token endpoint unreachable")
		return nil, domain.ErrExchangeFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("token endpoint returned an error status")
		return nil, domain.ErrExchangeFailed
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn().Err(err).Msg("token endpoint returned an unparseable body")
		return nil, domain.ErrExchangeFailed
	}

	creds, err := body.credentials(time.Now())
	if err != nil {
		c.logger.Warn().Msg("token response is missing required fields")
		return nil, err
	}
	return creds, nil
}

// FetchIdentity resolves the provider user id for the given credentials.
func (c *client) FetchIdentity(ctx context.Context, creds *domain.Credentials) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return "", domain.ErrIdentityFetch
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("identity endpoint unreachable")
		return "", domain.ErrIdentityFetch
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("identity endpoint returned an error status")
		return "", domain.ErrIdentityFetch
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", domain.ErrIdentityFetch
	}
	if user.ID == "" {
		return "", domain.ErrIdentityFetch
	}
	return user.ID, nil
}
