package discord_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"discord-auth-gateway/internal/domain"
	"discord-auth-gateway/internal/infrastructure/discord"
	"discord-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func validTokenBody() map[string]any {
	return map[string]any{
		"access_token":  "access-token",
		"expires_in":    3600,
		"refresh_token": "refresh-token",
		"scope":         "identify",
		"token_type":    "Bearer",
	}
}

func newTestClient(t *testing.T, tokenHandler, userHandler http.HandlerFunc) ports.Provider {
	t.Helper()
	mux := http.NewServeMux()
	if tokenHandler != nil {
		mux.HandleFunc("/oauth2/token", tokenHandler)
	}
	if userHandler != nil {
		mux.HandleFunc("/users/@me", userHandler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return discord.NewClient(
		"client-id", "client-secret", "identify", "https://gate.example.com/callback",
		zerolog.Nop(),
		discord.WithEndpoints(srv.URL+"/oauth2/authorize", srv.URL+"/oauth2/token", srv.URL+"/users/@me"),
	)
}

func TestAuthorizeURL(t *testing.T) {
	c := discord.NewClient("client-id", "client-secret", "identify", "https://gate.example.com/callback", zerolog.Nop())

	u, err := url.Parse(c.AuthorizeURL("some-state"))
	require.NoError(t, err)
	require.Equal(t, "discord.com", u.Host)
	require.Equal(t, "/api/oauth2/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "https://gate.example.com/callback", q.Get("redirect_uri"))
	require.Equal(t, "identify", q.Get("scope"))
	require.Equal(t, "some-state", q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the authorization-code grant", func(t *testing.T) {
		var form url.Values
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			form = r.PostForm
			json.NewEncoder(w).Encode(validTokenBody())
		}, nil)

		before := time.Now()
		creds, err := c.ExchangeCode(ctx, "the-code")
		require.NoError(t, err)

		require.Equal(t, "authorization_code", form.Get("grant_type"))
		require.Equal(t, "client-id", form.Get("client_id"))
		require.Equal(t, "client-secret", form.Get("client_secret"))
		require.Equal(t, "the-code", form.Get("code"))
		require.Equal(t, "https://gate.example.com/callback", form.Get("redirect_uri"))

		require.Equal(t, "access-token", creds.AccessToken)
		require.Equal(t, "refresh-token", creds.RefreshToken)
		require.Equal(t, "identify", creds.Scope)
		require.Equal(t, "Bearer", creds.TokenType)

		// Relative lifetime converted to an absolute timestamp at the
		// moment of the exchange, within call latency.
		require.WithinDuration(t, before.Add(3600*time.Second), creds.ExpiresAt, 2*time.Second)
	})

	t.Run("missing fields never produce credentials", func(t *testing.T) {
		cases := [][]string{
			{"access_token"},
			{"expires_in"},
			{"refresh_token"},
			{"scope"},
			{"token_type"},
			{"access_token", "refresh_token"},
			{"expires_in", "scope", "token_type"},
			{"access_token", "expires_in", "refresh_token", "scope", "token_type"},
		}
		for _, missing := range cases {
			body := validTokenBody()
			for _, field := range missing {
				delete(body, field)
			}
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(body)
			}, nil)

			creds, err := c.ExchangeCode(ctx, "the-code")
			require.ErrorIs(t, err, domain.ErrExchangeFailed, "missing %v", missing)
			require.Nil(t, creds)
		}
	})

	t.Run("empty fields are treated as missing", func(t *testing.T) {
		body := validTokenBody()
		body["access_token"] = ""
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(body)
		}, nil)

		_, err := c.ExchangeCode(ctx, "the-code")
		require.ErrorIs(t, err, domain.ErrExchangeFailed)
	})

	t.Run("non-2xx response fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}, nil)

		_, err := c.ExchangeCode(ctx, "the-code")
		require.ErrorIs(t, err, domain.ErrExchangeFailed)
	})

	t.Run("unparseable body fails", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}, nil)

		_, err := c.ExchangeCode(ctx, "the-code")
		require.ErrorIs(t, err, domain.ErrExchangeFailed)
	})

	t.Run("transport failure fails", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := discord.NewClient("client-id", "client-secret", "identify", "https://gate.example.com/callback",
			zerolog.Nop(), discord.WithEndpoints(srv.URL, srv.URL, srv.URL))

		_, err := c.ExchangeCode(ctx, "the-code")
		require.ErrorIs(t, err, domain.ErrExchangeFailed)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the refresh-token grant", func(t *testing.T) {
		var form url.Values
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			json.NewEncoder(w).Encode(validTokenBody())
		}, nil)

		creds, err := c.Refresh(ctx, &domain.Credentials{RefreshToken: "old-refresh"})
		require.NoError(t, err)
		require.NotNil(t, creds)

		require.Equal(t, "refresh_token", form.Get("grant_type"))
		require.Equal(t, "old-refresh", form.Get("refresh_token"))
		require.Equal(t, "client-id", form.Get("client_id"))
		require.Equal(t, "client-secret", form.Get("client_secret"))
		require.Empty(t, form.Get("code"))
	})

	t.Run("validates the response like a code exchange", func(t *testing.T) {
		body := validTokenBody()
		delete(body, "refresh_token")
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(body)
		}, nil)

		_, err := c.Refresh(ctx, &domain.Credentials{RefreshToken: "old-refresh"})
		require.ErrorIs(t, err, domain.ErrExchangeFailed)
	})
}

func TestFetchIdentity(t *testing.T) {
	ctx := context.Background()
	creds := &domain.Credentials{AccessToken: "access-token"}

	t.Run("presents the access token as a bearer credential", func(t *testing.T) {
		c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"id": "42", "username": "someone"})
		})

		id, err := c.FetchIdentity(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, "42", id)
	})

	t.Run("missing id fails", func(t *testing.T) {
		c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"username": "someone"})
		})

		_, err := c.FetchIdentity(ctx, creds)
		require.ErrorIs(t, err, domain.ErrIdentityFetch)
	})

	t.Run("non-2xx response fails", func(t *testing.T) {
		c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})

		_, err := c.FetchIdentity(ctx, creds)
		require.ErrorIs(t, err, domain.ErrIdentityFetch)
	})
}
