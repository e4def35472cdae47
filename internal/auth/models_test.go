package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessExpiresAt(t *testing.T) {
	t.Run("reads the exp claim without a key", func(t *testing.T) {
		expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
		})
		signed, err := token.SignedString([]byte("some-other-party's-secret"))
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}

		got, err := TokenPair{Access: signed}.AccessExpiresAt()
		if err != nil {
			t.Fatalf("AccessExpiresAt: %v", err)
		}
		if !got.Equal(expiry) {
			t.Errorf("got %v, want %v", got, expiry)
		}
	})

	t.Run("rejects opaque tokens", func(t *testing.T) {
		if _, err := (TokenPair{Access: "not-a-jwt"}).AccessExpiresAt(); err == nil {
			t.Error("expected an error for a non-JWT access token")
		}
	})

	t.Run("rejects tokens without exp", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{})
		signed, err := token.SignedString([]byte("k"))
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}
		if _, err := (TokenPair{Access: signed}).AccessExpiresAt(); err == nil {
			t.Error("expected an error when the exp claim is missing")
		}
	})
}
