package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultExpiresIn is the site token lifetime in seconds when no option overrides it.
const DefaultExpiresIn int64 = 86400

const (
	ErrTokenExpiredMessage = "Token has expired"
	ErrInvalidTokenMessage = "Invalid token"
)

var jwtSigningMethod = jwt.SigningMethodHS256

type tokenOptions struct {
	expiresIn int64
	issuedAt  time.Time
}

// TokenOption customizes GenerateToken.
type TokenOption func(*tokenOptions)

// WithExpiresIn sets the lifetime in seconds. Zero and negative values are allowed and
// produce tokens that are already at or past expiry.
func WithExpiresIn(seconds int64) TokenOption {
	return func(o *tokenOptions) {
		o.expiresIn = seconds
	}
}

// WithIssuedAt overrides the issue time, which defaults to time.Now.
func WithIssuedAt(at time.Time) TokenOption {
	return func(o *tokenOptions) {
		o.issuedAt = at
	}
}

// GenerateToken issues an HS256 site token for the payload. exp is always iat plus the
// configured lifetime and every token gets a fresh jti.
func GenerateToken(secret string, payload TokenPayload, opts ...TokenOption) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token secret is required")
	}
	if strings.TrimSpace(payload.LicenseID) == "" {
		return "", fmt.Errorf("license id is required")
	}

	options := tokenOptions{expiresIn: DefaultExpiresIn}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.issuedAt.IsZero() {
		options.issuedAt = time.Now()
	}

	issuedAt := options.issuedAt.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(time.Duration(options.expiresIn) * time.Second)

	claims := Claims{
		LicenseID: payload.LicenseID,
		SiteURL:   payload.SiteURL,
		Plan:      payload.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// DecodeToken returns the claims without checking the signature, or nil when the
// token is structurally malformed. Callers must not grant access based on it.
func DecodeToken(tokenString string) *Claims {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// VerifyResult is the outcome of VerifyToken. Claims is set only when Valid is true;
// Error is set only when it is false.
type VerifyResult struct {
	Valid  bool
	Claims *Claims
	Error  string
}

// Expired reports whether verification failed only because the token lapsed.
func (r VerifyResult) Expired() bool {
	return !r.Valid && r.Error == ErrTokenExpiredMessage
}

// VerifyToken checks the signature with secret and then expiry against now.
func VerifyToken(secret, tokenString string, now time.Time) VerifyResult {
	if secret == "" || strings.TrimSpace(tokenString) == "" {
		return VerifyResult{Error: ErrInvalidTokenMessage}
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil || claims.ExpiresAt == nil {
		return VerifyResult{Error: ErrInvalidTokenMessage}
	}
	if IsTokenExpired(claims, now) {
		return VerifyResult{Error: ErrTokenExpiredMessage}
	}
	return VerifyResult{Valid: true, Claims: claims}
}

// IsTokenExpired reports exp < now at second precision. Claims without exp are
// treated as expired.
func IsTokenExpired(claims *Claims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Unix() < now.Unix()
}
