package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints opaque session tokens. The gate never parses them;
// it only compares the cookie with the stored column.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing HS256 tokens with secret. An empty
// secret yields bare random UUIDs.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue returns a new token for the account identified by email.
func (i *TokenIssuer) Issue(email string) (string, error) {
	id := uuid.NewString()
	if len(i.secret) == 0 {
		return id, nil
	}

	claims := jwt.RegisteredClaims{
		ID:       id,
		Subject:  email,
		IssuedAt: jwt.NewNumericDate(i.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
