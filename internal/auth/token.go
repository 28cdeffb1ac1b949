package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("token is invalid")
	ErrWrongTokenUse = errors.New("token type mismatch")
)

// Claims carries the standard registered claims plus the token type so an
// access token can never be replayed as a refresh token or vice versa.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer signs and validates bearer tokens against a process-wide secret
// loaded from configuration.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessToken issues a signed, time-limited token whose subject is the
// user id of the caller.
func (i *Issuer) AccessToken(userID string) (string, error) {
	return i.sign(userID, TokenTypeAccess, i.accessTTL)
}

// RefreshToken issues the long-lived companion token used to obtain a new
// access token without re-submitting credentials.
func (i *Issuer) RefreshToken(userID string) (string, error) {
	return i.sign(userID, TokenTypeRefresh, i.refreshTTL)
}

func (i *Issuer) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ParseAccess validates an access token and returns the user id it is
// bound to.
func (i *Issuer) ParseAccess(tokenString string) (string, error) {
	return i.parse(tokenString, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns the user id it is
// bound to.
func (i *Issuer) ParseRefresh(tokenString string) (string, error) {
	return i.parse(tokenString, TokenTypeRefresh)
}

func (i *Issuer) parse(tokenString, wantType string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return "", ErrWrongTokenUse
	}
	return claims.Subject, nil
}
