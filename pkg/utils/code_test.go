package utils

import "testing"

func TestShortCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := ShortCode()
		if len(code) != 4 {
			t.Fatalf("Expected 4 characters, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("Expected digits only, got %q", code)
			}
		}
	}
}

func TestSeedFromStringIsStable(t *testing.T) {
	if SeedFromString("room-42") != SeedFromString("room-42") {
		t.Error("Expected identical seeds for identical strings")
	}
	if SeedFromString("room-42") == SeedFromString("room-43") {
		t.Error("Expected different seeds for different strings")
	}
}
