package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/gin-gonic/gin"
)

type fakeSessions struct {
	fn func(token string) (auth.Payload, error)
}

func (f fakeSessions) Verify(token string) (auth.Payload, error) {
	return f.fn(token)
}

func goodSessions() fakeSessions {
	return fakeSessions{fn: func(token string) (auth.Payload, error) {
		if token != "good" {
			return auth.Payload{}, auth.ErrTokenInvalid
		}
		return auth.Payload{UserID: "u-1", Username: "u@example.com", Role: string(access.RoleDataEntry)}, nil
	}}
}

func newGateRouter(g *Gatekeeper) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(g.Identify())

	r.GET("/login", g.RedirectAuthenticated(), func(c *gin.Context) { c.String(http.StatusOK, "login page") })

	protected := r.Group("/projects", g.RequireSession())
	protected.GET("", func(c *gin.Context) {
		actor, ok := actorctx.From(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, actor.ID)
	})

	return r
}

func withCookie(req *http.Request, value string) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: value})
	return req
}

func TestGatekeeper_NoCookieRedirectsToLogin(t *testing.T) {
	r := newGateRouter(NewGatekeeper(goodSessions(), false, nil))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != LoginRedirect {
		t.Fatalf("expected redirect to %q, got %q", LoginRedirect, loc)
	}
}

func TestGatekeeper_JSONClientGets401(t *testing.T) {
	r := newGateRouter(NewGatekeeper(goodSessions(), false, nil))

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
	}
}

type countingObserver struct{ events []string }

func (o *countingObserver) ObserveSession(event string) { o.events = append(o.events, event) }

func TestGatekeeper_ForgedCookieClearedAndRedirected(t *testing.T) {
	obs := &countingObserver{}
	r := newGateRouter(NewGatekeeper(goodSessions(), true, obs))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/projects", nil), "forged"))

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}

	setCookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, auth.SessionCookieName+"=") || !strings.Contains(setCookie, "Max-Age=0") {
		t.Fatalf("expected session cookie to be cleared, got %q", setCookie)
	}
	if !strings.Contains(setCookie, "Secure") {
		t.Fatalf("expected Secure on cleared cookie, got %q", setCookie)
	}
	if len(obs.events) != 1 || obs.events[0] != "rejected" {
		t.Fatalf("expected one rejected event, got %v", obs.events)
	}
}

func TestGatekeeper_ValidCookieAttachesActor(t *testing.T) {
	r := newGateRouter(NewGatekeeper(goodSessions(), false, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/projects", nil), "good"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "u-1" {
		t.Fatalf("expected actor u-1 in request context, got %q", w.Body.String())
	}
}

func TestGatekeeper_AuthenticatedLoginPageRedirects(t *testing.T) {
	r := newGateRouter(NewGatekeeper(goodSessions(), false, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), "good"))

	if w.Code != http.StatusFound || w.Header().Get("Location") != ProjectsDashboard {
		t.Fatalf("expected redirect to %s, got %d %q", ProjectsDashboard, w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected anonymous login page, got %d", w.Code)
	}
}

func TestGatekeeper_ExpiredSessionTreatedAsAnonymous(t *testing.T) {
	sessions := fakeSessions{fn: func(string) (auth.Payload, error) {
		return auth.Payload{}, auth.ErrTokenExpired
	}}
	r := newGateRouter(NewGatekeeper(sessions, false, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), "old"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected login page for expired session, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected expired cookie to be cleared")
	}
}

func TestRequireAnyRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := NewGatekeeper(fakeSessions{fn: func(token string) (auth.Payload, error) {
		if token == "viewer" {
			return auth.Payload{UserID: "v", Role: "Viewer"}, nil
		}
		return auth.Payload{}, errors.New("bad")
	}}, false, nil)

	r := gin.New()
	r.Use(g.Identify())
	r.GET("/p", g.RequireSession(), RequireAnyRole(access.RoleAdmin, access.RoleProjectManager, access.RoleDataEntry), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withCookie(httptest.NewRequest(http.MethodGet, "/p", nil), "viewer"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown role, got %d", w.Code)
	}
}
