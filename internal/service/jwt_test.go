package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(42, "alice")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	id, err := ParseJWT(token)
	if err != nil || id != 42 {
		t.Fatalf("ParseJWT = %d, %v", id, err)
	}
}

func TestParseJWTRejectsBadTokens(t *testing.T) {
	InitJWT("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredStr, _ := expired.SignedString([]byte("test-secret"))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Minute).Unix(),
	})
	foreignStr, _ := foreign.SignedString([]byte("other-secret"))

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	noUserStr, _ := noUser.SignedString([]byte("test-secret"))

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expiredStr, ErrTokenExpired},
		{"wrong secret", foreignStr, ErrInvalidToken},
		{"missing user", noUserStr, ErrInvalidToken},
	}
	for _, tc := range cases {
		if _, err := ParseJWT(tc.token); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v; want %v", tc.name, err, tc.want)
		}
	}
}
