package provider

import "strings"

const countryCodeBrazil = "55"

// NormalizePhone converts a raw phone string into the digits-with-country-code
// form the provider expects.
//
// Rules, in order: strip every non-digit, strip an international "00" prefix,
// strip a national trunk zero ahead of the area code, keep numbers already
// carrying the 55 country code, and prepend 55 to 10-11 digit numbers.
// 8-9 digit inputs come back unchanged: they lack an area code and guessing
// one would be worse than passing them through.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
	}

	// Trunk zero before the area code, e.g. "021 3456-7890".
	if len(digits) >= 11 && digits[0] == '0' {
		digits = digits[1:]
	}

	switch {
	case strings.HasPrefix(digits, countryCodeBrazil) && len(digits) >= 12:
		return digits
	case len(digits) == 10 || len(digits) == 11:
		return countryCodeBrazil + digits
	default:
		return digits
	}
}
