package licenses

import (
	"time"

	"github.com/angelmondragon/licensegate/pkg/db/models"
	"github.com/angelmondragon/licensegate/pkg/enums"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
)

type stateRule struct {
	code     pkgerrors.Code
	message  string
	violated func(license *models.License, requestedSiteURL string, now time.Time) bool
}

// stateRules is evaluated top to bottom and the first violated rule wins. A license
// failing several rules must always report the same code, so the order is policy.
var stateRules = []stateRule{
	{
		code:    pkgerrors.CodeLicenseSuspended,
		message: "License is suspended",
		violated: func(l *models.License, _ string, _ time.Time) bool {
			return l.Status == enums.LicenseStatusSuspended
		},
	},
	{
		code:    pkgerrors.CodeLicenseExpired,
		message: "License has expired",
		violated: func(l *models.License, _ string, _ time.Time) bool {
			return l.Status == enums.LicenseStatusExpired
		},
	},
	{
		// stored status can lag behind expires_at until the sync job runs
		code:    pkgerrors.CodeLicenseExpired,
		message: "License has expired",
		violated: func(l *models.License, _ string, now time.Time) bool {
			return !now.Before(l.ExpiresAt)
		},
	},
	{
		code:    pkgerrors.CodeURLMismatch,
		message: "Site URL does not match license",
		violated: func(l *models.License, requestedSiteURL string, _ time.Time) bool {
			return !SameSite(l.SiteURL, requestedSiteURL)
		},
	},
	{
		code:    pkgerrors.CodeQuotaExceeded,
		message: "Token quota exceeded",
		violated: func(l *models.License, _ string, _ time.Time) bool {
			return l.TokensUsed >= l.TokensLimit
		},
	},
}

// ValidateState checks a fetched license against the business rules for a request
// coming from requestedSiteURL. It returns nil when the license may be used, or a
// *errors.Error carrying the first violated rule's code.
func ValidateState(license *models.License, requestedSiteURL string, now time.Time) error {
	if license == nil {
		return pkgerrors.New(pkgerrors.CodeLicenseNotFound, "License not found")
	}
	for _, rule := range stateRules {
		if rule.violated(license, requestedSiteURL, now) {
			return pkgerrors.New(rule.code, rule.message)
		}
	}
	return nil
}
