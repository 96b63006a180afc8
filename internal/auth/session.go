package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = time.Hour

var (
	ErrMissingSecret = errors.New("session signing secret is not configured")
	ErrTokenInvalid  = errors.New("invalid session token")
	ErrTokenExpired  = errors.New("session token expired")
)

// Payload is the identity embedded in a session token.
type Payload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// Manager issues and verifies stateless session tokens. There is no
// server-side session store: a token stays valid until it expires, even
// after the cookie carrying it has been cleared.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}, nil
}

// Issue signs p with an absolute expiry of now+SessionTTL.
func (m *Manager) Issue(p Payload) (token string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   p.UserID,
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	return
}

// Verify checks signature and expiry. Callers treat both errors the same
// way (log the user out); they are split only for logging.
func (m *Manager) Verify(token string) (Payload, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, ErrTokenExpired
		}
		return Payload{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return Payload{}, ErrTokenInvalid
	}

	return claims.Payload, nil
}
