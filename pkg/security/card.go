package security

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidCardNumber = errors.New("card number must contain 12 to 19 digits")

// CardLast4 strips spaces and dashes from a card number and returns only its
// last four digits. The full number is never retained.
func CardLast4(number string) (string, error) {
	var digits strings.Builder
	for _, r := range number {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", ErrInvalidCardNumber
		}
	}
	clean := digits.String()
	if len(clean) < 12 || len(clean) > 19 {
		return "", ErrInvalidCardNumber
	}
	return clean[len(clean)-4:], nil
}
