package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	LoginRedirect     = "/login?redirected=true"
	ProjectsDashboard = "/projects"
)

// Keep this small interface so tests can fake it easily.
type SessionVerifier interface {
	Verify(token string) (auth.Payload, error)
}

// SessionObserver counts rejected session cookies. Optional.
type SessionObserver interface {
	ObserveSession(event string)
}

// Gatekeeper decides, before any handler runs, whether a request may reach
// a protected page and who is making it.
type Gatekeeper struct {
	sessions SessionVerifier
	secure   bool
	observer SessionObserver
}

func NewGatekeeper(sessions SessionVerifier, secureCookies bool, observer SessionObserver) *Gatekeeper {
	return &Gatekeeper{sessions: sessions, secure: secureCookies, observer: observer}
}

// Identify resolves the session cookie into an actor and stores it on both
// the gin context and the request context. A forged or expired cookie is
// cleared. It never blocks.
func (g *Gatekeeper) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.TokenFromRequest(c.Request)
		if !ok {
			c.Next()
			return
		}

		p, err := g.sessions.Verify(token)
		if err != nil {
			http.SetCookie(c.Writer, auth.ClearedSessionCookie(g.secure))
			if g.observer != nil {
				g.observer.ObserveSession("rejected")
			}
			c.Next()
			return
		}

		actor := access.Actor{ID: p.UserID, Username: p.Username, Role: access.Role(p.Role)}

		c.Set(CtxActor, actor)
		c.Set(CtxUserID, actor.ID)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// RequireSession lets authenticated requests through. Browsers are sent to
// the login page; JSON-only clients get a 401.
func (g *Gatekeeper) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFromContext(c); ok {
			c.Next()
			return
		}

		if wantsJSON(c.Request) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "User not authenticated. Please login.",
				},
			})
			return
		}

		c.Redirect(http.StatusFound, LoginRedirect)
		c.Abort()
	}
}

// RedirectAuthenticated sends a signed-in user away from the login and
// registration pages.
func (g *Gatekeeper) RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFromContext(c); ok && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusFound, ProjectsDashboard)
			c.Abort()
			return
		}
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok && actor.ID != ""
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// wantsJSON reports whether the client accepts JSON but not HTML.
func wantsJSON(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
