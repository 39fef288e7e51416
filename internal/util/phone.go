package util

import (
	"errors"
	"regexp"
	"strings"
)

// WhatsApp wants full international numbers without the plus sign,
// e.g. "6281234567890". We accept common local formatting and normalize.
var phoneDigits = regexp.MustCompile(`^[0-9]{8,15}$`)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone strips spaces, dashes, parentheses and a leading plus,
// then validates the remaining digit string (E.164 length bounds).
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, s)
	if !phoneDigits.MatchString(s) {
		return "", ErrInvalidPhone
	}
	return s, nil
}
