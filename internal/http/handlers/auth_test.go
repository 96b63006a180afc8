package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/geocoder89/qtohub/internal/domain/user"
	"github.com/geocoder89/qtohub/internal/http/handlers"
	"github.com/geocoder89/qtohub/internal/repo/memory"
	"github.com/geocoder89/qtohub/internal/security"
	"github.com/gin-gonic/gin"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *memory.UsersRepo, *auth.Manager) {
	t.Helper()

	mgr, err := auth.NewManager("test-secret")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	users := memory.NewStore().Users
	h := handlers.NewAuthHandler(users, mgr, false, nil, nil)

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/session", h.Session)

	return r, users, mgr
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterThenLogin(t *testing.T) {
	r, users, mgr := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/register", `{"fullName":"Ada Lovelace","email":"ada@example.com","password":"analytical","confirmPassword":"analytical"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	if sessionCookie(w) != nil {
		t.Fatalf("register must not start a session")
	}

	u, err := users.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.Role != string(access.RoleDataEntry) || u.Username != "ada@example.com" {
		t.Fatalf("unexpected defaults: role=%q username=%q", u.Role, u.Username)
	}
	if u.PasswordHash == "analytical" {
		t.Fatalf("password stored in clear")
	}

	w = doJSON(r, http.MethodPost, "/register", `{"fullName":"Ada Again","email":"ada@example.com","password":"analytical","confirmPassword":"analytical"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", w.Code)
	}
	if msg := decodeError(t, w).Message; msg != "Email already registered." {
		t.Fatalf("unexpected duplicate message %q", msg)
	}

	w = doJSON(r, http.MethodPost, "/login", `{"email":"ada@example.com","password":"analytical"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	c := sessionCookie(w)
	if c == nil {
		t.Fatalf("login must set the session cookie")
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}

	p, err := mgr.Verify(c.Value)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.UserID != u.ID || p.Role != u.Role {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestLoginFailuresShareMessage(t *testing.T) {
	r, users, _ := newAuthRouter(t)

	hash, err := security.HashPassword("the-right-one")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := users.Create(context.Background(), user.New("bob@example.com", hash, "Bob", "Data Entry")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	unknown := doJSON(r, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"whatever1"}`)
	wrong := doJSON(r, http.MethodPost, "/login", `{"email":"bob@example.com","password":"wrong"}`)

	for name, w := range map[string]*httptest.ResponseRecorder{"unknown": unknown, "wrong": wrong} {
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
		if msg := decodeError(t, w).Message; msg != "Invalid email or password." {
			t.Fatalf("%s: unexpected message %q", name, msg)
		}
		if sessionCookie(w) != nil {
			t.Fatalf("%s: no cookie expected on failure", name)
		}
	}
}

func TestSessionStatusAndLogout(t *testing.T) {
	r, _, mgr := newAuthRouter(t)

	token, _, err := mgr.Issue(auth.Payload{UserID: "u-1", Username: "u@example.com", Role: "Admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	get := func(cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	var status handlers.SessionStatus

	w := get(token)
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.IsLoggedIn || status.User == nil || status.User.UserID != "u-1" {
		t.Fatalf("expected logged in as u-1, got %+v", status)
	}

	w = get(token + "tampered")
	status = handlers.SessionStatus{}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.IsLoggedIn {
		t.Fatalf("tampered token must not be logged in")
	}
	if c := sessionCookie(w); c == nil || c.MaxAge >= 0 {
		t.Fatalf("tampered cookie must be cleared, got %+v", c)
	}

	w = doJSON(r, http.MethodPost, "/logout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("logout must clear the cookie, got %q", w.Header().Get("Set-Cookie"))
	}
}
