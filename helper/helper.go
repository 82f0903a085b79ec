package helper

import (
	"context"
	"errors"
	"os"
	"time"

	"marketplace-portal/model"

	"github.com/golang-jwt/jwt/v5"
)

type ContextKey string

const SessionKey ContextKey = "session"

var ErrNoSession = errors.New("no session in context")

func GetEnv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// jwtSecret is read on every call so tests can swap JWT_SECRET.
func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "defaultsecret" // dev fallback only
	}
	return []byte(secret)
}

// SessionClaims is the payload of a portal session token.
type SessionClaims struct {
	Role           string         `json:"role"`
	UserInfo       model.UserInfo `json:"userInfo"`
	AllowedScreens []string       `json:"allowedScreens,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token valid for ttl.
func GenerateSessionToken(s model.Session, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		Role:           s.Role,
		UserInfo:       s.UserInfo,
		AllowedScreens: s.AllowedScreens,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserInfo.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseSessionToken verifies tokenStr and returns the session it carries.
// The raw token is kept on the session so it can be forwarded upstream.
func ParseSessionToken(tokenStr string) (model.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return model.Session{}, err
	}
	if !token.Valid || claims.UserInfo.ID == "" || claims.Role == "" {
		return model.Session{}, jwt.ErrTokenInvalidClaims
	}

	return model.Session{
		Role:           claims.Role,
		UserInfo:       claims.UserInfo,
		AllowedScreens: append([]string(nil), claims.AllowedScreens...),
		Token:          tokenStr,
	}, nil
}

func WithSession(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext returns the request session set by the auth middleware.
func SessionFromContext(ctx context.Context) (model.Session, error) {
	if s, ok := ctx.Value(SessionKey).(model.Session); ok {
		return s, nil
	}
	return model.Session{}, ErrNoSession
}
