package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"discord-auth-gateway/internal/domain"
)

const sessionCookieName = "gateway_session"

// cookieCodec signs and verifies the session id carried by the browser
// cookie, so a forged cookie cannot address another session.
type cookieCodec struct {
	secret []byte
	domain string
}

func newCookieCodec(secret, cookieDomain string) *cookieCodec {
	return &cookieCodec{
		secret: []byte(secret),
		domain: cookieDomain,
	}
}

func (c *cookieCodec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// encode produces the cookie value "<id>.<signature>".
func (c *cookieCodec) encode(id string) string {
	return id + "." + c.sign(id)
}

// decode verifies a cookie value and returns the session id it carries.
func (c *cookieCodec) decode(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", false
	}
	return id, true
}

// write sets the session cookie: scoped to the configured domain,
// multi-year expiry, SameSite=Lax, never exposed to scripts.
func (c *cookieCodec) write(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.encode(id),
		Path:     "/",
		Domain:   "." + c.domain,
		Expires:  time.Now().Add(domain.SessionLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
