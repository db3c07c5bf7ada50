package middleware

import (
	"context"

	"github.com/angelmondragon/licensegate/pkg/auth"
	"github.com/angelmondragon/licensegate/pkg/db/models"
)

type contextKey string

const (
	ctxClaims  contextKey = "license_claims"
	ctxLicense contextKey = "license"
)

// ClaimsFromContext returns the verified token claims set by LicenseAuth.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.Claims); ok {
		return v
	}
	return nil
}

// LicenseFromContext returns the license snapshot loaded during authentication.
func LicenseFromContext(ctx context.Context) *models.License {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxLicense).(*models.License); ok {
		return v
	}
	return nil
}

// WithClaims injects verified claims into the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// WithLicense injects the authenticated license into the context.
func WithLicense(ctx context.Context, license *models.License) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLicense, license)
}
