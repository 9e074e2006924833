// Package auth issues and verifies the credentials used by the API:
// short-lived signed access tokens, opaque refresh tokens and password hashes.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of an access token.
const DefaultAccessTokenTTL = 15 * time.Minute

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned for malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrNoSigningKey is returned by NewIssuer when the signing key is empty.
	ErrNoSigningKey = errors.New("signing key is empty")
)

// Issuer signs access tokens with the current key and verifies them against
// the current key followed by any retired keys.
type Issuer struct {
	current  []byte
	previous [][]byte
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer builds an Issuer. previous lists retired keys that are still
// accepted for verification; a key removed from it stops validating tokens.
func NewIssuer(secret string, previous []string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	i := &Issuer{current: []byte(secret), ttl: ttl, now: time.Now}
	for _, p := range previous {
		if p != "" {
			i.previous = append(i.previous, []byte(p))
		}
	}
	return i, nil
}

// TTL returns the access token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// AccessToken returns an HS256 JWT whose subject is userID.
func (i *Issuer) AccessToken(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	})
	return token.SignedString(i.current)
}

// Verify checks the signature and expiry of tokenString and returns its subject.
func (i *Issuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	for _, key := range i.keys() {
		subject, verr := i.verifyWith(tokenString, key)
		if verr == nil {
			return subject, nil
		}
		if errors.Is(verr, jwt.ErrTokenSignatureInvalid) {
			continue
		}
		if errors.Is(verr, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	return "", ErrInvalidToken
}

func (i *Issuer) keys() [][]byte {
	return append([][]byte{i.current}, i.previous...)
}

func (i *Issuer) verifyWith(tokenString string, key []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
