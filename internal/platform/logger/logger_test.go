package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	t.Parallel()

	l := &Logger{redact: true}
	got := l.sanitizeKVs([]interface{}{"api_key", "yk_live_123", "asset_id", "0xabc:1", "yakoa_token_id", "0xabc:1"})
	if got[1] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", got[1])
	}
	if got[3] != "0xabc:1" {
		t.Fatalf("asset_id must pass through: %v", got[3])
	}
	if got[5] != "0xabc:1" {
		t.Fatalf("token ids are not secrets: %v", got[5])
	}
}

func TestSanitizeHashesWallets(t *testing.T) {
	t.Parallel()

	l := &Logger{redact: true, hashSalt: "pepper"}
	got := l.sanitizeKVs([]interface{}{"creator_id", "0x1234567890123456789012345678901234567890"})
	s, _ := got[1].(string)
	if !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
		t.Fatalf("creator_id not hashed: %q", s)
	}
	again := l.sanitizeKVs([]interface{}{"creator_id", "0x1234567890123456789012345678901234567890"})
	if again[1] != got[1] {
		t.Fatalf("hash not stable: %v vs %v", again[1], got[1])
	}
}

func TestSanitizeDisabled(t *testing.T) {
	t.Parallel()

	l := &Logger{}
	got := l.sanitizeKVs([]interface{}{"api_key", "yk_live_123"})
	if got[1] != "yk_live_123" {
		t.Fatalf("redaction disabled should pass values through: %v", got[1])
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	t.Parallel()

	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("service", "x").Info("hello", "k", "v")
}
