// Package token extracts claims from bearer tokens on the client side, without
// signature verification. The server's "who am I" endpoint stays authoritative
// for validity; these claims are informational only (CLI display, debug
// logging of an already-expired token).
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/DinhTQSE/schoolmed-client/internal/utils"
)

// Claims is the informational subset of a bearer token's payload.
type Claims struct {
	Subject   string
	Roles     []string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token's expiry, if any, is before now. A token
// without an exp claim never reports expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now)
}

// Inspect parses raw as a JWT without verifying its signature. Opaque
// (non-JWT) tokens return an error; callers treat that as "no claim
// information available", not as an invalid session.
func Inspect(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("[token.Inspect] empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[token.Inspect] parse")
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[token.Inspect] error extracting claims")
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims["sub"].(string)

	if rawRoles, ok := mapClaims["roles"].([]any); ok {
		claims.Roles = utils.ToStringSlice(rawRoles)
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = utils.Ptr(exp.Time)
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = utils.Ptr(iat.Time)
	}

	return claims, nil
}
