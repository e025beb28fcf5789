package entity

import (
	"time"

	"campus/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is the access/refresh credential pair issued on sign-in. Both
// strings are opaque to the credential store; claims are decoded by callers
// through ParseAccessClaims.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Valid reports whether both credentials are present.
func (p TokenPair) Valid() bool {
	return p.Access != "" && p.Refresh != ""
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshData is the payload returned by the refresh endpoint. The refresh
// token is not rotated; only a new access token is issued.
type RefreshData struct {
	Access string `json:"access"`
}

// AccessClaims are the application claims embedded in an access token.
type AccessClaims struct {
	UserID       int64
	UserType     UserType
	IsSuperAdmin bool
	ExpiresAt    time.Time
}

// ParseAccessClaims decodes the claims of an access token without verifying
// the signature. Verification belongs to the server; the client only needs
// the role and expiry for display decisions.
func ParseAccessClaims(accessToken string) (*AccessClaims, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}

	out := &AccessClaims{}
	if sub, ok := claims["user_id"].(float64); ok {
		out.UserID = int64(sub)
	}
	if ut, ok := claims["user_type"].(float64); ok {
		out.UserType = UserType(ut)
	}
	if super, ok := claims["is_superadmin"].(bool); ok {
		out.IsSuperAdmin = super
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	return out, nil
}
