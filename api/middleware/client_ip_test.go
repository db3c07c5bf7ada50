package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestClientAddress(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
	}

	tests := []struct {
		name      string
		trusted   []netip.Prefix
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{name: "no proxies configured", remote: "203.0.113.5:4444", forwarded: "198.51.100.1", realIP: "198.51.100.2", want: "203.0.113.5"},
		{name: "untrusted peer", trusted: trusted, remote: "203.0.113.5:4444", forwarded: "198.51.100.1", want: "203.0.113.5"},
		{name: "trusted peer single hop", trusted: trusted, remote: "10.1.2.3:80", forwarded: "198.51.100.1", want: "198.51.100.1"},
		{name: "spoofed leftmost entry", trusted: trusted, remote: "10.1.2.3:80", forwarded: "1.1.1.1, 198.51.100.1", want: "198.51.100.1"},
		{name: "chain of trusted proxies", trusted: trusted, remote: "10.1.2.3:80", forwarded: "198.51.100.1, 192.0.2.1, 10.9.9.9", want: "198.51.100.1"},
		{name: "all hops trusted", trusted: trusted, remote: "10.1.2.3:80", forwarded: "10.0.0.7, 10.0.0.8", want: "10.0.0.7"},
		{name: "blank hops skipped", trusted: trusted, remote: "10.1.2.3:80", forwarded: " , 198.51.100.1, ", want: "198.51.100.1"},
		{name: "real ip from trusted peer", trusted: trusted, remote: "10.1.2.3:80", realIP: "198.51.100.9", want: "198.51.100.9"},
		{name: "trusted peer without headers", trusted: trusted, remote: "10.1.2.3:80", want: "10.1.2.3"},
		{name: "ipv4 mapped peer", trusted: trusted, remote: "[::ffff:10.1.2.3]:80", forwarded: "198.51.100.1", want: "198.51.100.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientAddress(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClientIPWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
	if ClientIP(nil) != "" {
		t.Fatal("nil request has no ip")
	}
}
