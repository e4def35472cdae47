package stubserver

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	grantAccess  = "access"
	grantRefresh = "refresh"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int    `json:"uid"`
	Grant  string `json:"gty"`
}

func (s *Server) issueToken(userID int, grant string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Grant:  grant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// validateToken parses a token and checks its signature, expiry and grant
// type. Rotated-out refresh tokens stay valid until expiry; the stub does
// not track revocations.
func (s *Server) validateToken(tokenString, grant string) (*tokenClaims, error) {
	claims := new(tokenClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Grant != grant {
		return nil, fmt.Errorf("unexpected grant type: %s", claims.Grant)
	}
	return claims, nil
}
