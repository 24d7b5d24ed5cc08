// Package keygen issues customer license keys. Shared by the licensectl CLI
// so keys look identical regardless of where they were minted.
package keygen

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

const (
	prefix    = "HL"
	groups    = 4
	groupLen  = 8 // hex chars per group
	groupByte = groupLen / 2
)

var keyPattern = regexp.MustCompile(`^HL(-[0-9A-F]{8}){4}$`)

// GenerateKey mints a key of the form HL-XXXXXXXX-XXXXXXXX-XXXXXXXX-XXXXXXXX
// from a CSPRNG.
func GenerateKey() (string, error) {
	parts := make([]string, 0, groups+1)
	parts = append(parts, prefix)
	for i := 0; i < groups; i++ {
		buf := make([]byte, groupByte)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		parts = append(parts, fmt.Sprintf("%X", buf))
	}
	return strings.Join(parts, "-"), nil
}

// ValidFormat reports whether s looks like a key this package issued.
func ValidFormat(s string) bool {
	return keyPattern.MatchString(s)
}
