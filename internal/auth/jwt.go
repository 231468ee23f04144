package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("service token secret is empty")

// JWTTokenSource mints HS256 service tokens for the backend and reuses them
// until they are close to expiry.
type JWTTokenSource struct {
	secret  string
	userID  string
	iss     string
	ttl     time.Duration
	leeway  time.Duration
	nowFunc func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

func NewJWTTokenSource(secret, userID, iss string, ttl time.Duration) *JWTTokenSource {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTTokenSource{
		secret:  secret,
		userID:  userID,
		iss:     iss,
		ttl:     ttl,
		leeway:  ttl / 10,
		nowFunc: time.Now,
	}
}

// Token returns a cached token or signs a new one.
func (a *JWTTokenSource) Token() (string, error) {
	if a.secret == "" {
		return "", ErrMissingSecret
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowFunc()
	if a.current != "" && now.Add(a.leeway).Before(a.expires) {
		return a.current, nil
	}

	exp := now.Add(a.ttl)
	claims := jwt.MapClaims{
		"userId": a.userID,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
		"iss":    a.iss,
	}

	token, err := a.generateTokenWithClaims(claims)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}

	a.current = token
	a.expires = exp
	return token, nil
}

func (a *JWTTokenSource) generateTokenWithClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Validate parses a token minted by this source. The backend performs the
// same check; it is exposed here for diagnostics and tests.
func (a *JWTTokenSource) Validate(token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
}
