package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomHexLength(t *testing.T) {
	for _, n := range []int{0, 1, 16, 32} {
		got := GenerateRandomHex(n)
		if len(got) != n {
			t.Errorf("GenerateRandomHex(%d) length = %d", n, len(got))
		}
		for _, r := range got {
			if !strings.ContainsRune("0123456789abcdef", r) {
				t.Errorf("non-hex rune %q in %q", r, got)
			}
		}
	}
}

func TestGenerateSessionID(t *testing.T) {
	id := GenerateSessionID()
	if !strings.HasPrefix(id, "sess_") || len(id) != len("sess_")+32 {
		t.Errorf("unexpected session id %q", id)
	}
	if id == GenerateSessionID() {
		t.Error("two generated ids should differ")
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("HD_TEST_BOOL", "yes")
	if !ParseBoolEnv("HD_TEST_BOOL", false) {
		t.Error("expected yes to parse true")
	}
	t.Setenv("HD_TEST_BOOL", "off")
	if ParseBoolEnv("HD_TEST_BOOL", true) {
		t.Error("expected off to parse false")
	}
	t.Setenv("HD_TEST_BOOL", "maybe")
	if !ParseBoolEnv("HD_TEST_BOOL", true) {
		t.Error("expected invalid value to fall back to default")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("HD_TEST_STR", "")
	if got := GetEnv("HD_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv("HD_TEST_STR", "set")
	if got := GetEnv("HD_TEST_STR", "fallback"); got != "set" {
		t.Errorf("expected set, got %q", got)
	}
}
