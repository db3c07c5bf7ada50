package licenses

import (
	"net/url"
	"strings"
)

// NormalizeSiteURL reduces a site URL to scheme://host/path with a lower-cased host
// and trailing slashes removed. Ports and paths are kept, so sites that
// differ only there stay distinct. Unparseable input falls back to a lower-cased raw
// comparison form.
func NormalizeSiteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(strings.ToLower(trimmed), "/")
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host) + strings.TrimRight(parsed.Path, "/")
}

// SameSite reports whether two site URLs normalize to the same value.
func SameSite(a, b string) bool {
	return NormalizeSiteURL(a) == NormalizeSiteURL(b)
}
