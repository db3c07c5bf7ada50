package licenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/licensegate/internal/audit"
	"github.com/angelmondragon/licensegate/pkg/auth"
	"github.com/angelmondragon/licensegate/pkg/db/models"
	"github.com/angelmondragon/licensegate/pkg/enums"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
	"github.com/angelmondragon/licensegate/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type licenseStore interface {
	Get(ctx context.Context, licenseKey string) (*models.License, error)
	UpdateSiteToken(ctx context.Context, licenseKey, token string, at time.Time) error
}

type auditSink interface {
	Append(ctx context.Context, entry audit.Entry) (uuid.UUID, error)
}

// Metrics receives validation and authentication outcomes.
type Metrics interface {
	ObserveValidation(outcome string)
	ObserveTokenIssued(reason string)
	ObserveAuthentication(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveValidation(string)     {}
func (noopMetrics) ObserveTokenIssued(string)    {}
func (noopMetrics) ObserveAuthentication(string) {}

const (
	outcomeSuccess = "success"

	tokenReasonNew     = "new"
	tokenReasonRotated = "rotated"
)

// ServiceParams wires the validation service.
type ServiceParams struct {
	Store   licenseStore
	Audit   auditSink
	Logger  *logger.Logger
	Metrics Metrics
	// Secret signs and verifies site tokens.
	Secret string
	// TokenExpiresIn is the lifetime in seconds of newly minted tokens. Zero uses
	// auth.DefaultExpiresIn.
	TokenExpiresIn int64
	Now            func() time.Time
}

// Service answers license validation requests.
type Service struct {
	store     licenseStore
	audit     auditSink
	logg      *logger.Logger
	metrics   Metrics
	secret    string
	expiresIn int64
	now       func() time.Time
}

// NewService validates params and builds a Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("license store required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(params.Secret) == "" {
		return nil, fmt.Errorf("token secret required")
	}
	expiresIn := params.TokenExpiresIn
	if expiresIn == 0 {
		expiresIn = auth.DefaultExpiresIn
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     params.Store,
		audit:     params.Audit,
		logg:      params.Logger,
		metrics:   metrics,
		secret:    params.Secret,
		expiresIn: expiresIn,
		now:       now,
	}, nil
}

// ProcessValidation runs the full validation flow for one request. Business outcomes
// come back as a *ValidationResponse; the error return is reserved for store failures
// the caller must surface as INTERNAL_ERROR.
func (s *Service) ProcessValidation(ctx context.Context, req ValidationRequest, ipAddress string) (*ValidationResponse, error) {
	if err := ValidateLicenseKeyFormat(req.LicenseKey); err != nil {
		return s.reject(ctx, strings.TrimSpace(req.LicenseKey), ipAddress, err), nil
	}
	if err := ValidateSiteURLFormat(req.SiteURL); err != nil {
		return s.reject(ctx, strings.TrimSpace(req.LicenseKey), ipAddress, err), nil
	}

	key := NormalizeLicenseKey(req.LicenseKey)
	ctx = s.logg.WithLicenseKey(ctx, key)

	license, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(ctx, key, ipAddress, pkgerrors.New(pkgerrors.CodeLicenseNotFound, "License not found")), nil
		}
		return nil, fmt.Errorf("fetch license: %w", err)
	}

	now := s.now()
	if err := ValidateState(license, req.SiteURL, now); err != nil {
		return s.reject(ctx, key, ipAddress, err), nil
	}

	token, err := s.resolveToken(ctx, key, license, now)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		LicenseID:   key,
		RequestType: enums.AuditRequestValidate,
		Status:      enums.AuditStatusSuccess,
		IPAddress:   ipAddress,
	})
	s.metrics.ObserveValidation(outcomeSuccess)

	return granted(Grant{
		UserID:          license.UserID,
		SiteToken:       token,
		Plan:            license.Plan,
		TokensLimit:     license.TokensLimit,
		TokensRemaining: license.TokensRemaining(),
		ResetDate:       license.ResetDate.UTC().Format(ResetDateLayout),
	}), nil
}

// resolveToken returns the cached token when it still verifies and describes this
// license, otherwise mints and stores a new one. Concurrent callers may both mint;
// the last write is kept and every minted token stays valid until its own exp.
func (s *Service) resolveToken(ctx context.Context, key string, license *models.License, now time.Time) (string, error) {
	reason := tokenReasonNew
	if cached := license.CachedToken(); cached != "" {
		if s.reusable(key, license, cached, now) {
			return cached, nil
		}
		reason = tokenReasonRotated
	}

	token, err := auth.GenerateToken(s.secret, auth.TokenPayload{
		LicenseID: key,
		SiteURL:   license.SiteURL,
		Plan:      license.Plan,
	}, auth.WithExpiresIn(s.expiresIn), auth.WithIssuedAt(now))
	if err != nil {
		return "", fmt.Errorf("generate site token: %w", err)
	}
	if err := s.store.UpdateSiteToken(ctx, key, token, now); err != nil {
		return "", fmt.Errorf("store site token: %w", err)
	}

	s.metrics.ObserveTokenIssued(reason)
	s.logg.Debug(s.logg.WithField(ctx, "reason", reason), "license.token_issued")
	return token, nil
}

func (s *Service) reusable(key string, license *models.License, cached string, now time.Time) bool {
	result := auth.VerifyToken(s.secret, cached, now)
	if !result.Valid {
		return false
	}
	claims := result.Claims
	return claims.LicenseID == key && claims.SiteURL == license.SiteURL && claims.Plan == license.Plan
}

func (s *Service) reject(ctx context.Context, licenseID, ipAddress string, err error) *ValidationResponse {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validation failed")
	}
	message := typed.Message()
	s.record(ctx, audit.Entry{
		LicenseID:    licenseID,
		RequestType:  enums.AuditRequestValidate,
		Status:       enums.AuditStatusFailed,
		ErrorMessage: &message,
		IPAddress:    ipAddress,
	})
	s.metrics.ObserveValidation(string(typed.Code()))
	s.logg.Info(s.logg.WithField(ctx, "code", string(typed.Code())), "license.validation_rejected")
	return rejected(typed)
}

// record writes an audit entry. Sink failures are logged and never change the outcome.
func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if _, err := s.audit.Append(ctx, entry); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "audit_error", err.Error()), "license.audit_write_failed")
	}
}
