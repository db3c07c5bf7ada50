package licenses

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
)

var licenseKeyPattern = regexp.MustCompile(`^CREATOR-\d{4}-[A-Z0-9]{5}-[A-Z0-9]{5}$`)

// NormalizeLicenseKey trims surrounding whitespace and upper-cases the key.
func NormalizeLicenseKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// ValidateLicenseKeyFormat checks the CREATOR-YYYY-XXXXX-XXXXX shape. Lower-case input
// is accepted because comparison happens on the normalized form. Non-ASCII input is
// rejected before upper-casing, since ToUpper folds some runes onto ASCII letters.
func ValidateLicenseKeyFormat(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidFormat, "license key is required")
	}
	if !isASCII(trimmed) || !licenseKeyPattern.MatchString(strings.ToUpper(trimmed)) {
		return pkgerrors.New(pkgerrors.CodeInvalidFormat, "Invalid license key format")
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ValidateSiteURLFormat requires an absolute http or https URL with a host.
func ValidateSiteURLFormat(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidFormat, "site url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidFormat, "Invalid site URL format")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeInvalidFormat, "Site URL must use http or https")
	}
}
