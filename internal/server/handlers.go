package server

import (
	"context"
	"errors"
	"net/http"

	"discord-auth-gateway/internal/application"
	"discord-auth-gateway/internal/domain"

	"github.com/google/uuid"
)

// loadSession resolves the request's session from its cookie. A missing,
// tampered or unloadable cookie yields a fresh session.
func (s *Server) loadSession(ctx context.Context, r *http.Request) *domain.Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, ok := s.cookies.decode(cookie.Value); ok {
			sess, err := s.sessions.Get(ctx, id)
			if err == nil {
				return sess
			}
			s.logger.Error().Err(err).Msg("failed to load session")
		}
	}
	return &domain.Session{ID: uuid.NewString()}
}

// saveSession persists the session and refreshes the cookie carrying it.
func (s *Server) saveSession(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error {
	if err := s.sessions.Save(ctx, sess); err != nil {
		return err
	}
	s.cookies.write(w, sess.ID)
	return nil
}

// handleRoot is the access-decision entry point.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.loadSession(ctx, r)

	switch s.auth.Authorize(ctx, sess) {
	case application.DecisionAnonymous:
		s.metrics.AccessDecisions.WithLabelValues("anonymous").Inc()
		http.Redirect(w, r, "/login", http.StatusFound)
	case application.DecisionAllowed:
		s.metrics.AccessDecisions.WithLabelValues("allowed").Inc()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	case application.DecisionDenied:
		s.metrics.AccessDecisions.WithLabelValues("denied").Inc()
		http.Error(w, "KO", http.StatusForbidden)
	}
}

// handleLogin initiates the authorization flow.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.loadSession(ctx, r)

	authURL, err := s.auth.BeginLogin(sess)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin login")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.saveSession(ctx, w, sess); err != nil {
		s.logger.Error().Err(err).Msg("failed to save session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.metrics.LoginsInitiated.Inc()
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the authorization flow. The session is saved
// even when the callback fails: the consumed nonce, and any credentials
// stored before an identity-fetch failure, must be persisted.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.loadSession(ctx, r)

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	loginErr := s.auth.CompleteLogin(ctx, sess, state, code)

	if err := s.saveSession(ctx, w, sess); err != nil {
		s.logger.Error().Err(err).Msg("failed to save session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if loginErr != nil {
		s.metrics.CallbackOutcomes.WithLabelValues(callbackOutcome(loginErr)).Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.metrics.CallbackOutcomes.WithLabelValues("success").Inc()
	http.Redirect(w, r, s.entryPoint, http.StatusFound)
}

func callbackOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCSRFMismatch):
		return "csrf_mismatch"
	case errors.Is(err, domain.ErrExchangeFailed):
		return "exchange_failed"
	case errors.Is(err, domain.ErrIdentityFetch):
		return "identity_failed"
	default:
		return "error"
	}
}
