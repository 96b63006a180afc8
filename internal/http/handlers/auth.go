package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/geocoder89/qtohub/internal/config"
	"github.com/geocoder89/qtohub/internal/domain/user"
	"github.com/geocoder89/qtohub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type SessionManager interface {
	Issue(p auth.Payload) (string, time.Time, error)
	Verify(token string) (auth.Payload, error)
}

// SessionObserver counts session lifecycle events. Optional.
type SessionObserver interface {
	ObserveSession(event string)
}

type AuthHandler struct {
	users    UserStore
	sessions SessionManager
	secure   bool
	observer SessionObserver
	log      *slog.Logger
}

func NewAuthHandler(users UserStore, sessions SessionManager, secureCookies bool, observer SessionObserver, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		secure:   secureCookies,
		observer: observer,
		log:      log,
	}
}

// AuthResponse mirrors what the login and registration forms render.
type AuthResponse struct {
	Message string        `json:"message"`
	Type    string        `json:"type"`
	User    *auth.Payload `json:"user,omitempty"`
}

type SessionStatus struct {
	IsLoggedIn bool          `json:"isLoggedIn"`
	User       *auth.Payload `json:"user"`
}

const msgInvalidCredentials = "Invalid email or password."

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "hash password failed", "err", err)
		RespondInternal(ctx, "Registration failed due to a server error. Please try again.")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// new accounts always start as Data Entry
	u := user.New(req.Email, hash, req.FullName, string(access.RoleDataEntry))

	_, err = h.users.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondError(ctx, http.StatusConflict, "email_taken", "Email already registered.", gin.H{"field": "email"})
			return
		}

		h.log.ErrorContext(cctx, "create user failed", "err", err)
		RespondInternal(ctx, "Registration failed due to a server error. Please try again.")
		return
	}

	ctx.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully! Please login.",
		Type:    "success",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			h.log.ErrorContext(cctx, "lookup user failed", "err", err)
			RespondInternal(ctx, "Login failed due to a server error. Please try again.")
			return
		}
		RespondUnAuthorized(ctx, "invalid_credentials", msgInvalidCredentials)
		return
	}

	if !security.VerifyPassword(found.PasswordHash, req.Password) {
		RespondUnAuthorized(ctx, "invalid_credentials", msgInvalidCredentials)
		return
	}

	payload := auth.Payload{UserID: found.ID, Username: found.Username, Role: found.Role}

	token, _, err := h.sessions.Issue(payload)
	if err != nil {
		h.log.ErrorContext(cctx, "issue session failed", "user_id", found.ID, "err", err)
		RespondInternal(ctx, "Login failed due to a server error. Please try again.")
		return
	}

	http.SetCookie(ctx.Writer, auth.SessionCookie(token, h.secure))
	h.observe("issued")

	ctx.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful! Redirecting...",
		Type:    "success",
		User:    &payload,
	})
}

// Logout clears the cookie. The token itself stays valid until it expires.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, auth.ClearedSessionCookie(h.secure))
	h.observe("revoked")

	ctx.JSON(http.StatusOK, AuthResponse{Message: "Logged out successfully.", Type: "success"})
}

func (h *AuthHandler) Session(ctx *gin.Context) {
	token, ok := auth.TokenFromRequest(ctx.Request)
	if !ok {
		ctx.JSON(http.StatusOK, SessionStatus{})
		return
	}

	p, err := h.sessions.Verify(token)
	if err != nil {
		h.log.WarnContext(ctx.Request.Context(), "session token verification failed", "err", err)
		http.SetCookie(ctx.Writer, auth.ClearedSessionCookie(h.secure))
		ctx.JSON(http.StatusOK, SessionStatus{})
		return
	}

	ctx.JSON(http.StatusOK, SessionStatus{IsLoggedIn: true, User: &p})
}

func (h *AuthHandler) observe(event string) {
	if h.observer != nil {
		h.observer.ObserveSession(event)
	}
}
