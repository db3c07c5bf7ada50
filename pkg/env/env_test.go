package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LICENSEGATE_ENV_TEST", "  console ")
	if got := Get("LICENSEGATE_ENV_TEST", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("LICENSEGATE_ENV_TEST", "   ")
	if got := Get("LICENSEGATE_ENV_TEST", "json"); got != "json" {
		t.Fatalf("blank values fall back, got %q", got)
	}
}
