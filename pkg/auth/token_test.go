package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/licensegate/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func testPayload() TokenPayload {
	return TokenPayload{
		LicenseID: "CREATOR-2024-ABCDE-FGHIJ",
		SiteURL:   "https://test.com",
		Plan:      enums.PlanPro,
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken(testSecret, testPayload())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected three segments, got %d", len(parts))
	}

	result := VerifyToken(testSecret, token, now)
	if !result.Valid {
		t.Fatalf("expected valid token, got error %q", result.Error)
	}
	if result.Claims.Payload() != testPayload() {
		t.Fatalf("unexpected payload %+v", result.Claims.Payload())
	}
	if result.Claims.ID == "" {
		t.Fatal("expected jti to be set")
	}

	lifetime := result.Claims.ExpiresAt.Unix() - result.Claims.IssuedAt.Unix()
	if lifetime != DefaultExpiresIn {
		t.Fatalf("expected default lifetime %d, got %d", DefaultExpiresIn, lifetime)
	}
}

func TestGenerateTokenHonorsExpiresInAndIssuedAt(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := GenerateToken(testSecret, testPayload(), WithIssuedAt(issued), WithExpiresIn(3600))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims := DecodeToken(token)
	if claims == nil {
		t.Fatal("expected decodable token")
	}
	if claims.IssuedAt.Unix() != issued.Unix() {
		t.Fatalf("expected iat %d got %d", issued.Unix(), claims.IssuedAt.Unix())
	}
	if claims.ExpiresAt.Unix() != issued.Unix()+3600 {
		t.Fatalf("expected exp iat+3600, got %d", claims.ExpiresAt.Unix())
	}
}

func TestGenerateTokenAssignsUniqueJTI(t *testing.T) {
	first, err := GenerateToken(testSecret, testPayload())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	second, err := GenerateToken(testSecret, testPayload())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}
	if DecodeToken(first).ID == DecodeToken(second).ID {
		t.Fatal("expected distinct jti values")
	}
}

func TestGenerateTokenRequiresSecretAndLicense(t *testing.T) {
	if _, err := GenerateToken("", testPayload()); err == nil {
		t.Fatal("expected missing secret error")
	}
	if _, err := GenerateToken(testSecret, TokenPayload{SiteURL: "https://test.com"}); err == nil {
		t.Fatal("expected missing license id error")
	}
}

func TestTokenClaimsWireFormat(t *testing.T) {
	token, err := GenerateToken(testSecret, testPayload())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	segment := strings.Split(token, ".")[1]
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		t.Fatalf("claims segment is not base64url: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("claims segment is not json: %v", err)
	}
	want := []string{"license_id", "site_url", "plan", "iat", "exp", "jti"}
	if len(fields) != len(want) {
		t.Fatalf("expected exactly %v, got %v", want, fields)
	}
	for _, key := range want {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing claim %q in %v", key, fields)
		}
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	token, err := GenerateToken(testSecret, testPayload(), WithExpiresIn(-1))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims := DecodeToken(token)
	if claims == nil {
		t.Fatal("expired token should still decode")
	}
	if !IsTokenExpired(claims, time.Now()) {
		t.Fatal("expected token to be expired")
	}

	result := VerifyToken(testSecret, token, time.Now())
	if result.Valid {
		t.Fatal("expected expired token to fail verification")
	}
	if result.Error != ErrTokenExpiredMessage {
		t.Fatalf("expected %q, got %q", ErrTokenExpiredMessage, result.Error)
	}
	if !result.Expired() {
		t.Fatal("expected Expired() to report true")
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken(testSecret, testPayload())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := map[string]struct {
		secret string
		token  string
	}{
		"wrong secret":    {secret: "other-secret", token: token},
		"mangled sig":     {secret: testSecret, token: token + "x"},
		"not a token":     {secret: testSecret, token: "invalid"},
		"empty token":     {secret: testSecret, token: ""},
		"empty secret":    {secret: "", token: token},
		"two segments":    {secret: testSecret, token: strings.Join(strings.Split(token, ".")[:2], ".")},
		"swapped payload": {secret: testSecret, token: swapPayload(t, token)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := VerifyToken(tt.secret, tt.token, time.Now())
			if result.Valid {
				t.Fatal("expected verification failure")
			}
			if result.Error != ErrInvalidTokenMessage {
				t.Fatalf("expected %q, got %q", ErrInvalidTokenMessage, result.Error)
			}
			if result.Claims != nil {
				t.Fatal("failed verification must not expose claims")
			}
		})
	}
}

func TestVerifyTokenRejectsUnsignedAlgorithm(t *testing.T) {
	claims := Claims{
		LicenseID: "CREATOR-2024-ABCDE-FGHIJ",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if result := VerifyToken(testSecret, unsigned, time.Now()); result.Valid {
		t.Fatal("alg=none token must be rejected")
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "a.b.c", "a.b", "...."} {
		if claims := DecodeToken(raw); claims != nil {
			t.Fatalf("expected nil claims for %q", raw)
		}
	}
}

func TestIsTokenExpiredBoundary(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}
	if IsTokenExpired(claims, now) {
		t.Fatal("exp == now is not expired")
	}
	if !IsTokenExpired(claims, now.Add(time.Second)) {
		t.Fatal("exp < now is expired")
	}
	if !IsTokenExpired(nil, now) {
		t.Fatal("nil claims count as expired")
	}
	if !IsTokenExpired(&Claims{}, now) {
		t.Fatal("claims without exp count as expired")
	}
}

func swapPayload(t *testing.T, token string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	forged, err := json.Marshal(map[string]any{
		"license_id": "CREATOR-2024-ZZZZZ-ZZZZZ",
		"site_url":   "https://evil.example",
		"plan":       "enterprise",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("marshal forged payload: %v", err)
	}
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)
	return strings.Join(parts, ".")
}
