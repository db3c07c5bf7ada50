package auth

import (
	"github.com/angelmondragon/licensegate/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// TokenPayload captures the license identity available when minting a site token.
type TokenPayload struct {
	LicenseID string
	SiteURL   string
	Plan      enums.Plan
}

// Claims is the typed payload carried by a site token. Only iat, exp and jti are
// populated on the embedded registered claims.
type Claims struct {
	LicenseID string     `json:"license_id"`
	SiteURL   string     `json:"site_url"`
	Plan      enums.Plan `json:"plan"`
	jwt.RegisteredClaims
}

// Payload returns the license identity portion of the claims.
func (c *Claims) Payload() TokenPayload {
	if c == nil {
		return TokenPayload{}
	}
	return TokenPayload{
		LicenseID: c.LicenseID,
		SiteURL:   c.SiteURL,
		Plan:      c.Plan,
	}
}
