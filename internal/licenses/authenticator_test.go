package licenses

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/licensegate/pkg/auth"
	"github.com/angelmondragon/licensegate/pkg/enums"
	pkgerrors "github.com/angelmondragon/licensegate/pkg/errors"
)

func newTestAuthenticator(t *testing.T, store *stubStore, metrics Metrics) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(store, testSecret, metrics)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	a.now = func() time.Time { return fixedNow }
	return a
}

func tokenFor(t *testing.T, secret string, opts ...auth.TokenOption) string {
	t.Helper()
	license := activeLicense()
	opts = append([]auth.TokenOption{auth.WithIssuedAt(fixedNow)}, opts...)
	token, err := auth.GenerateToken(secret, auth.TokenPayload{
		LicenseID: license.LicenseKey,
		SiteURL:   license.SiteURL,
		Plan:      license.Plan,
	}, opts...)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestNewAuthenticatorRequiresDependencies(t *testing.T) {
	if _, err := NewAuthenticator(nil, testSecret, nil); err == nil {
		t.Fatal("expected missing store error")
	}
	if _, err := NewAuthenticator(newStubStore(), "", nil); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestAuthenticateRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		mutate func(*stubStore)
		want   pkgerrors.Code
	}{
		{name: "valid token", header: "Bearer " + tokenFor(t, testSecret)},
		{name: "no header", header: "", want: pkgerrors.CodeMissingAuth},
		{name: "wrong scheme", header: "InvalidFormat token123", want: pkgerrors.CodeMissingAuth},
		{name: "garbage token", header: "Bearer not.a.token", want: pkgerrors.CodeInvalidToken},
		{name: "foreign secret", header: "Bearer " + tokenFor(t, "other-secret"), want: pkgerrors.CodeInvalidToken},
		{name: "expired token", header: "Bearer " + tokenFor(t, testSecret, auth.WithExpiresIn(-1)), want: pkgerrors.CodeInvalidToken},
		{
			name:   "license suspended after issuance",
			header: "Bearer " + tokenFor(t, testSecret),
			mutate: func(s *stubStore) {
				s.licenses["CREATOR-2024-ABCDE-FGHIJ"].Status = enums.LicenseStatusSuspended
			},
			want: pkgerrors.CodeLicenseSuspended,
		},
		{
			name:   "quota exhausted after issuance",
			header: "Bearer " + tokenFor(t, testSecret),
			mutate: func(s *stubStore) {
				l := s.licenses["CREATOR-2024-ABCDE-FGHIJ"]
				l.TokensUsed = l.TokensLimit
			},
			want: pkgerrors.CodeQuotaExceeded,
		},
		{
			name:   "license lapsed after issuance",
			header: "Bearer " + tokenFor(t, testSecret),
			mutate: func(s *stubStore) {
				s.licenses["CREATOR-2024-ABCDE-FGHIJ"].ExpiresAt = fixedNow.Add(-time.Second)
			},
			want: pkgerrors.CodeLicenseExpired,
		},
		{
			name:   "site rebound after issuance",
			header: "Bearer " + tokenFor(t, testSecret),
			mutate: func(s *stubStore) {
				s.licenses["CREATOR-2024-ABCDE-FGHIJ"].SiteURL = "https://moved.example"
			},
			want: pkgerrors.CodeURLMismatch,
		},
		{
			name:   "license removed",
			header: "Bearer " + tokenFor(t, testSecret),
			mutate: func(s *stubStore) {
				delete(s.licenses, "CREATOR-2024-ABCDE-FGHIJ")
			},
			want: pkgerrors.CodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore(activeLicense())
			if tt.mutate != nil {
				tt.mutate(store)
			}
			metrics := &recordingMetrics{}
			a := newTestAuthenticator(t, store, metrics)

			req := httptest.NewRequest("GET", "/api/v1/license/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result, err := a.AuthenticateRequest(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == "" {
				if !result.Authenticated || result.Claims == nil || result.License == nil {
					t.Fatalf("expected authenticated result, got %+v", result)
				}
				if result.Claims.LicenseID != "CREATOR-2024-ABCDE-FGHIJ" {
					t.Fatalf("unexpected claims %+v", result.Claims)
				}
				if len(metrics.auths) != 1 || metrics.auths[0] != outcomeSuccess {
					t.Fatalf("unexpected metrics %v", metrics.auths)
				}
				return
			}
			if result.Authenticated || result.Claims != nil {
				t.Fatal("rejected result must not expose claims")
			}
			if result.Code() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, result.Code())
			}
			if len(metrics.auths) != 1 || metrics.auths[0] != string(tt.want) {
				t.Fatalf("unexpected metrics %v", metrics.auths)
			}
		})
	}
}

func TestAuthenticateRequestPropagatesStoreErrors(t *testing.T) {
	store := newStubStore(activeLicense())
	store.getErr = errors.New("db down")
	a := newTestAuthenticator(t, store, nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, testSecret))
	if _, err := a.AuthenticateRequest(context.Background(), req); err == nil {
		t.Fatal("expected store error")
	}
}
