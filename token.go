package folio

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenSubject = "admin"

// tokenIssuer signs and verifies the HS256 bearer tokens handed out at login.
type tokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func newTokenIssuer(secret, issuer string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue returns a signed token and its expiry.
func (t *tokenIssuer) Issue(now time.Time) (string, time.Time, error) {
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.issuer,
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, issuer, subject and expiry.
func (t *tokenIssuer) Verify(raw string) error {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithSubject(tokenSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return errors.New("token invalid")
	}
	return nil
}
