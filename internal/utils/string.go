package utils

import (
	"strconv"
	"unicode/utf8"
)

// FormatWithCommas renders n with thousands separators: 12345 -> "12,345".
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	out := make([]byte, 0, len(s)+len(s)/3+1)
	if neg {
		out = append(out, '-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// TooLong reports whether s has more than max runes. A max below one
// disables the check.
func TooLong(s string, max int) bool {
	return max > 0 && utf8.RuneCountInString(s) > max
}
