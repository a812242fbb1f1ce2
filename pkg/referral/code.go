// Package referral generates the short share codes handed out on enrollment.
package referral

import (
	"math/rand/v2"
	"strings"
)

// Alphabet is uppercase letters and digits without the look-alikes I, O, 0 and 1.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultLength = 8

// GenerateCode draws length independent uniform samples from Alphabet.
// Codes are not secrets; math/rand is sufficient.
func GenerateCode(length int) string {
	if length <= 0 {
		return ""
	}

	b := make([]byte, length)
	for i := range b {
		b[i] = Alphabet[rand.IntN(len(Alphabet))]
	}
	return string(b)
}

func IsValidCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}

// Normalize trims and upper-cases a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
