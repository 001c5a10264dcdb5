// Package taxid validates and normalizes the 11-digit national taxpayer
// identifier carried by every client.
package taxid

import (
	"fmt"
	"strings"

	"github.com/gosuda/seguro/internal/domain"
)

// Length is the number of digits of a normalized identifier.
const Length = 11

// Normalize strips every non-digit character from raw.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate normalizes raw and verifies its two check digits. It returns the
// normalized identifier or an error wrapping domain.ErrInvalidIdentifier.
func Validate(raw string) (string, error) {
	digits := Normalize(raw)
	if len(digits) != Length {
		return "", fmt.Errorf("taxid.Validate: want %d digits, got %d: %w", Length, len(digits), domain.ErrInvalidIdentifier)
	}
	if strings.Count(digits, digits[:1]) == Length {
		return "", fmt.Errorf("taxid.Validate: repeated digit sequence: %w", domain.ErrInvalidIdentifier)
	}

	for pos := 9; pos < Length; pos++ {
		if checkDigit(digits[:pos]) != digits[pos]-'0' {
			return "", fmt.Errorf("taxid.Validate: check digit %d mismatch: %w", pos-8, domain.ErrInvalidIdentifier)
		}
	}

	return digits, nil
}

// Format renders a normalized identifier as 000.000.000-00.
func Format(digits string) string {
	if len(digits) != Length {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// checkDigit computes the weighted-sum-mod-11 digit over prefix, with
// weights len(prefix)+1 down to 2.
func checkDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := range len(prefix) {
		sum += int(prefix[i]-'0') * (weight - i)
	}
	return byte((sum * 10) % 11 % 10)
}
