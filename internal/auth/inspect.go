package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is what can be read from a JWT access token without verifying it.
type AccessClaims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InspectAccessToken decodes the registered claims of a JWT access token for
// display. The signature is not checked; the result must never be used for
// authorization decisions. Opaque tokens return an error.
func InspectAccessToken(access string) (*AccessClaims, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return nil, err
	}

	out := &AccessClaims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
