package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTTokenSourceSignsClaims(t *testing.T) {
	src := NewJWTTokenSource("s3cret", "storefront-user", "storefront", time.Hour)

	token, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	parsed, err := src.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims["userId"] != "storefront-user" {
		t.Errorf("userId = %v", claims["userId"])
	}
	if claims["iss"] != "storefront" {
		t.Errorf("iss = %v", claims["iss"])
	}
}

func TestJWTTokenSourceReusesUntilNearExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	src := NewJWTTokenSource("s3cret", "u", "storefront", time.Hour)
	src.nowFunc = func() time.Time { return now }

	first, err := src.Token()
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Minute)
	second, _ := src.Token()
	if second != first {
		t.Fatal("token should be reused while fresh")
	}

	now = now.Add(25 * time.Minute) // inside the leeway window
	third, _ := src.Token()
	if third == first {
		t.Fatal("token should be re-signed close to expiry")
	}
}

func TestJWTTokenSourceRequiresSecret(t *testing.T) {
	src := NewJWTTokenSource("", "u", "storefront", time.Hour)
	if _, err := src.Token(); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token()
	if err != nil || tok != "abc" {
		t.Fatalf("got %q %v", tok, err)
	}
}
