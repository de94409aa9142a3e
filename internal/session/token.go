package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reads the exp claim without verifying the signature; the
// portal never holds the backend's signing key. Tokens that are not JWTs, or
// carry no exp, are treated as live and left for the backend to reject.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
