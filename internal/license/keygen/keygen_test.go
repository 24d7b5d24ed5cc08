package keygen

import "testing"

func TestGenerateKeyFormat(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if !ValidFormat(key) {
		t.Fatalf("generated key %q does not match the expected format", key)
	}
	if len(key) != len("HL-XXXXXXXX-XXXXXXXX-XXXXXXXX-XXXXXXXX") {
		t.Errorf("key length = %d: %q", len(key), key)
	}
}

func TestGenerateKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key, err := GenerateKey()
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key after %d generations: %q", i, key)
		}
		seen[key] = true
	}
}

func TestValidFormat(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"HL-AAAAAAAA-BBBBBBBB-CCCCCCCC-DDDDDDDD", true},
		{"HL-12345678-9ABCDEF0-12345678-9ABCDEF0", true},
		{"", false},
		{"HL-AAAA-BBBB-CCCC-DDDD", false},
		{"hl-aaaaaaaa-bbbbbbbb-cccccccc-dddddddd", false},
		{"XX-AAAAAAAA-BBBBBBBB-CCCCCCCC-DDDDDDDD", false},
		{"HL-AAAAAAAA-BBBBBBBB-CCCCCCCC", false},
	}
	for _, tt := range tests {
		if got := ValidFormat(tt.key); got != tt.want {
			t.Errorf("ValidFormat(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
