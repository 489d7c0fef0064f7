package utils

import (
	"strings"
	"testing"
)

func TestGenerateRoomID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRoomID()
		if !strings.HasPrefix(id, "room_") {
			t.Fatalf("expected room_ prefix, got %q", id)
		}
		if len(id) != len("room_")+16 {
			t.Fatalf("expected 16 hex chars after prefix, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate room id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeString("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newlines should survive, got %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestMaskSensitive(t *testing.T) {
	if got := MaskSensitive("secret-token", 3); got != "sec*********" {
		t.Fatalf("got %q", got)
	}
	if got := MaskSensitive("ab", 3); got != "**" {
		t.Fatalf("got %q", got)
	}
}
