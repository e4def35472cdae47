package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ma-crm/crm-go/internal/domain"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair holds the short-lived access token and the longer-lived refresh
// token. A pair is either complete or the session is unauthenticated; partial
// pairs are never kept.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessExpiresAt reports the expiry claim of the access token. The token is
// decoded without signature verification; the client never holds the signing
// key and only needs the timestamp.
func (t TokenPair) AccessExpiresAt() (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Access, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return claims.ExpiresAt.Time, nil
}

// Session is the persisted slice of authentication state: the current user
// and token pair, set together on login and cleared together on logout or
// refresh failure. Transient flags are not part of it.
type Session struct {
	User   *domain.User `json:"user"`
	Tokens *TokenPair   `json:"tokens"`
}
