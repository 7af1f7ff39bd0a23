package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/st3v3nn/KLADISHOP/internal/auth"
	"github.com/st3v3nn/KLADISHOP/internal/session"
)

// SessionCfg configures the session middleware.
type SessionCfg struct {
	Provider   auth.Provider
	Registry   *session.Registry
	CookieName string
	Secure     bool
	TTL        time.Duration
}

const (
	ctxKeySession = "session"
	ctxKeyToken   = "session_token"
)

// Session resolves the token cookie against the auth provider and puts
// the tracked session snapshot into the request context. Requests
// without a live token proceed as Anonymous.
func Session(cfg SessionCfg) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		if _, ok := cfg.Provider.Resolve(token); !ok {
			// Dead token: clear the cookie and continue anonymous.
			c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
			c.Next()
			return
		}

		c.Set(ctxKeyToken, token)
		c.Set(ctxKeySession, cfg.Registry.Get(token))
		c.Next()
	}
}

// SetSessionCookie is called after login/register.
func SetSessionCookie(c *gin.Context, cfg SessionCfg, token string) {
	c.SetCookie(cfg.CookieName, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
}

// ClearSessionCookie is called after logout.
func ClearSessionCookie(c *gin.Context, cfg SessionCfg) {
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
}

// SessionToken returns the raw token for the current request, if any.
func SessionToken(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyToken)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// CurrentSession returns the tracked session snapshot for the request.
func CurrentSession(c *gin.Context) session.Snapshot {
	if v, ok := c.Get(ctxKeySession); ok {
		if snap, ok := v.(session.Snapshot); ok {
			return snap
		}
	}
	return session.Snapshot{State: session.StateAnonymous}
}

// CurrentUser returns the authenticated identity, if the session is in
// the Authenticated state.
func CurrentUser(c *gin.Context) (auth.Identity, bool) {
	snap := CurrentSession(c)
	if snap.State != session.StateAuthenticated {
		return auth.Identity{}, false
	}
	return snap.Identity, true
}
