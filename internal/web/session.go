package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/session"
)

// sessionMiddleware resolves the session cookie, issuing a new session when
// it is missing or expired, and records the id in the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			current = c.Value
		}

		id, created := s.sessions.Resolve(current)
		if created {
			s.setSessionCookie(w, id)
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), id)))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// withWorkspace runs fn on the request's workspace under its session lock.
// A session swept after the middleware resolved it is replaced by a fresh
// one, and the new cookie is set on w.
func (s *Server) withWorkspace(w http.ResponseWriter, r *http.Request, fn func(*core.Workspace) error) error {
	id := core.SessionIDFromContext(r.Context())
	err := s.sessions.With(id, fn)
	if !errors.Is(err, session.ErrNotFound) {
		return err
	}

	fresh, _ := s.sessions.Resolve("")
	logging.FromContext(r.Context()).Warn("session expired during request", "new_session_id", fresh)
	s.setSessionCookie(w, fresh)
	return s.sessions.With(fresh, fn)
}
