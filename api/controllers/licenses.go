package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/licensegate/api/middleware"
	"github.com/angelmondragon/licensegate/api/responses"
	"github.com/angelmondragon/licensegate/api/validators"
	"github.com/angelmondragon/licensegate/internal/licenses"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
	"github.com/angelmondragon/licensegate/pkg/logger"
)

type validationService interface {
	ProcessValidation(ctx context.Context, req licenses.ValidationRequest, ipAddress string) (*licenses.ValidationResponse, error)
}

// LicenseValidate handles POST /api/license/validate.
func LicenseValidate(svc validationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body licenses.ValidationRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ip := validators.SanitizeIP(middleware.ClientIP(r))
		resp, err := svc.ProcessValidation(ctx, body, ip)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !resp.Succeeded() {
			responses.WriteError(ctx, logg, w, resp.Err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, resp)
	}
}

type sessionBody struct {
	Success         bool   `json:"success"`
	LicenseID       string `json:"license_id"`
	SiteURL         string `json:"site_url"`
	Plan            string `json:"plan"`
	ExpiresAt       int64  `json:"expires_at"`
	TokensRemaining int64  `json:"tokens_remaining"`
}

// LicenseSession handles GET /api/v1/license/session behind LicenseAuth and echoes
// the verified identity with the current quota.
func LicenseSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims := middleware.ClaimsFromContext(ctx)
		license := middleware.LicenseFromContext(ctx)
		if claims == nil || license == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeMissingAuth, "Missing or invalid authorization header"))
			return
		}

		body := sessionBody{
			Success:         true,
			LicenseID:       claims.LicenseID,
			SiteURL:         claims.SiteURL,
			Plan:            string(claims.Plan),
			TokensRemaining: license.TokensRemaining(),
		}
		if claims.ExpiresAt != nil {
			body.ExpiresAt = claims.ExpiresAt.Unix()
		}
		responses.WriteJSON(w, http.StatusOK, body)
	}
}

// MethodNotAllowed answers known routes hit with an unsupported method.
func MethodNotAllowed(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInvalidMethod, "Method not allowed"))
	}
}
