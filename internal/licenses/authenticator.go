package licenses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/licensegate/pkg/auth"
	"github.com/angelmondragon/licensegate/pkg/db/models"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
	"gorm.io/gorm"
)

type licenseReader interface {
	Get(ctx context.Context, licenseKey string) (*models.License, error)
}

// AuthResult is the outcome of authenticating one request. Claims and License are
// set only when Authenticated is true; Err only when it is false.
type AuthResult struct {
	Authenticated bool
	Claims        *auth.Claims
	License       *models.License
	Err           *pkgerrors.Error
}

// Code returns the failure code, or "" when authenticated.
func (r AuthResult) Code() pkgerrors.Code {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code()
}

func denied(code pkgerrors.Code, message string) AuthResult {
	return AuthResult{Err: pkgerrors.New(code, message)}
}

// Authenticator checks bearer site tokens and re-validates the license they name.
type Authenticator struct {
	store   licenseReader
	secret  string
	metrics Metrics
	now     func() time.Time
}

// NewAuthenticator builds an Authenticator. metrics may be nil.
func NewAuthenticator(store licenseReader, secret string, metrics Metrics) (*Authenticator, error) {
	if store == nil {
		return nil, fmt.Errorf("license store required")
	}
	if secret == "" {
		return nil, fmt.Errorf("token secret required")
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Authenticator{store: store, secret: secret, metrics: metrics, now: time.Now}, nil
}

// AuthenticateRequest authorizes r from its Authorization header. Token expiry and
// tampering both surface as INVALID_TOKEN. License state is re-checked against the
// store so suspensions and quota exhaustion after issuance take effect immediately.
func (a *Authenticator) AuthenticateRequest(ctx context.Context, r *http.Request) (AuthResult, error) {
	result, err := a.authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		a.metrics.ObserveAuthentication(string(pkgerrors.CodeInternal))
		return AuthResult{}, err
	}
	if result.Authenticated {
		a.metrics.ObserveAuthentication(outcomeSuccess)
	} else {
		a.metrics.ObserveAuthentication(string(result.Code()))
	}
	return result, nil
}

func (a *Authenticator) authenticate(ctx context.Context, header string) (AuthResult, error) {
	token, ok := auth.ExtractBearerToken(header)
	if !ok {
		return denied(pkgerrors.CodeMissingAuth, "Missing or invalid authorization header"), nil
	}

	now := a.now()
	verified := auth.VerifyToken(a.secret, token, now)
	if !verified.Valid {
		return denied(pkgerrors.CodeInvalidToken, "Invalid or expired token"), nil
	}
	claims := verified.Claims

	license, err := a.store.Get(ctx, claims.LicenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(pkgerrors.CodeInvalidToken, "Invalid or expired token"), nil
		}
		return AuthResult{}, fmt.Errorf("fetch license: %w", err)
	}

	if err := ValidateState(license, claims.SiteURL, now); err != nil {
		return AuthResult{Err: pkgerrors.As(err)}, nil
	}

	return AuthResult{Authenticated: true, Claims: claims, License: license}, nil
}
