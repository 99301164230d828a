// Package auth mints and verifies the short-lived session tokens the client
// attaches to every ledger gateway call.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenHeaderName is the gRPC metadata key carrying the session token.
const AccessTokenHeaderName = "access_token"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	// ErrNoOwner is returned by a TokenSource nobody is logged in to.
	ErrNoOwner = errors.New("no session owner")
)

// Claims binds a token to the ledger owner identity it was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Owner string `json:"owner"`
}

func GenerateToken(owner string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Owner: owner,
	})

	s, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// OwnerFromToken verifies the signature and expiry and returns the owner.
func OwnerFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Owner == "" {
		return "", ErrInvalidToken
	}

	return claims.Owner, nil
}

// TokenSource caches a token for one owner and re-issues it shortly before
// expiry. It is what the gRPC client interceptor asks for on each call.
type TokenSource struct {
	owner    string
	secret   []byte
	validity time.Duration

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func NewTokenSource(owner string, secret []byte, validity time.Duration) *TokenSource {
	return &TokenSource{owner: owner, secret: secret, validity: validity, now: time.Now}
}

func (s *TokenSource) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// SetOwner switches the identity tokens are issued for. An empty owner
// logs the source out.
func (s *TokenSource) SetOwner(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner != s.owner {
		s.owner = owner
		s.token = ""
	}
}

// Token returns a valid token, minting a new one when the cached token has
// less than a tenth of its validity left.
func (s *TokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == "" {
		return "", ErrNoOwner
	}

	now := s.now()
	if s.token != "" && now.Add(s.validity/10).Before(s.expires) {
		return s.token, nil
	}

	tok, err := GenerateToken(s.owner, s.secret, s.validity)
	if err != nil {
		return "", err
	}
	s.token = tok
	s.expires = now.Add(s.validity)
	return tok, nil
}
