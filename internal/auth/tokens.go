package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anon381/Movie-Search-App/internal/errs"
)

// issueAccessToken creates a signed HS256 JWT for the given user and
// session ids.
func issueAccessToken(signKey []byte, userID, sessionID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(signKey)
	return signed, exp, err
}

// parseAccessToken validates a JWT and returns the user and session ids.
// An expired or otherwise invalid token maps to ErrSessionExpired so the
// caller can prompt re-authentication instead of failing hard.
func parseAccessToken(signKey []byte, tokenString string) (userID, sessionID string, err error) {
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", errs.ErrSessionExpired
		}
		return "", "", fmt.Errorf("%w: %s", errs.ErrUnauthorized, err)
	}
	return claims.Subject, claims.ID, nil
}
