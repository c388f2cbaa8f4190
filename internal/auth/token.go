package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BrandonDHaskell/accesshub/internal/access"
)

const issuer = "accesshub"

var ErrInvalidToken = errors.New("invalid session token")

// Claims is the session token payload.  Subject carries the user id.
type Claims struct {
	Role access.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue returns a signed token for p and its expiry.
func (t *TokenIssuer) Issue(p access.Principal) (string, time.Time, error) {
	if p.UserID == "" || !p.Role.Valid() {
		return "", time.Time{}, access.ErrUnauthenticated
	}
	now := t.now().UTC()
	exp := now.Add(t.ttl)

	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, issuer and expiry and returns the principal.
func (t *TokenIssuer) Parse(token string) (access.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return access.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	p := access.Principal{UserID: claims.Subject, Role: claims.Role}
	if p.UserID == "" || !p.Role.Valid() {
		return access.Principal{}, ErrInvalidToken
	}
	return p, nil
}
