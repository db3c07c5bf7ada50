package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/licensegate/api/responses"
	"github.com/angelmondragon/licensegate/internal/licenses"
	"github.com/angelmondragon/licensegate/pkg/logger"
)

type requestAuthenticator interface {
	AuthenticateRequest(ctx context.Context, r *http.Request) (licenses.AuthResult, error)
}

// LicenseAuth admits requests carrying a valid site token for a license that is still
// usable. Rejections use the flat failure body with the code's mapped status.
func LicenseAuth(authenticator requestAuthenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			result, err := authenticator.AuthenticateRequest(ctx, r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !result.Authenticated {
				responses.WriteError(ctx, logg, w, result.Err)
				return
			}

			ctx = WithClaims(ctx, result.Claims)
			ctx = WithLicense(ctx, result.License)
			if logg != nil {
				ctx = logg.WithLicenseKey(ctx, result.Claims.LicenseID)
				ctx = logg.WithField(ctx, "plan", string(result.Claims.Plan))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
