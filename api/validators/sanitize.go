package validators

import (
	"net"
	"strings"
)

const maxAddressLength = 64

// SanitizeIP normalizes a client address for audit storage. Ports and IPv6 brackets
// are dropped from parseable addresses; anything else is trimmed and truncated.
func SanitizeIP(raw string) string {
	addr := strings.TrimSpace(raw)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	if len(addr) > maxAddressLength {
		return addr[:maxAddressLength]
	}
	return addr
}
