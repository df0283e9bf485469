package phone

import (
	"strings"
)

var stripper = strings.NewReplacer(
	" ", "",
	"\t", "",
	"(", "",
	")", "",
	"-", "",
)

// Normalize strips whitespace, parentheses and hyphens. The leading "+" is kept.
func Normalize(raw string) string {
	return stripper.Replace(strings.TrimSpace(raw))
}

// Match reports whether two phone numbers refer to the same line. Numbers match when
// their normalized forms are equal or when one is a suffix of the other, so a number
// typed without its country code matches the stored international one. Both sides
// must be Valid, which keeps a short fragment from matching on its last digits.
func Match(claimed, stored string) bool {
	if !Valid(claimed) || !Valid(stored) {
		return false
	}

	a := Normalize(claimed)
	b := Normalize(stored)

	if a == b {
		return true
	}

	return strings.HasSuffix(a, b) || strings.HasSuffix(b, a)
}

// Valid accepts an optional leading "+" followed by 6 to 15 digits once normalized.
func Valid(raw string) bool {
	n := strings.TrimPrefix(Normalize(raw), "+")
	if len(n) < 6 || len(n) > 15 {
		return false
	}

	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// ToE164 turns a local number into international form using defaultCountryCode
// (for example "+228"). Numbers already starting with "+" or "00" are kept.
func ToE164(raw, defaultCountryCode string) string {
	n := Normalize(raw)

	switch {
	case strings.HasPrefix(n, "+"):
		return n
	case strings.HasPrefix(n, "00"):
		return "+" + strings.TrimPrefix(n, "00")
	}

	cc := strings.TrimPrefix(Normalize(defaultCountryCode), "+")
	if cc != "" && strings.HasPrefix(n, cc) && len(n) > 10 {
		return "+" + n
	}

	return "+" + cc + strings.TrimPrefix(n, "0")
}
