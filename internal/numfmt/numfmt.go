// Package numfmt converts between float64 and text using the same rules the
// source data was produced with: ECMAScript Number-to-String for output and
// parseFloat-style prefix scanning for input.
package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// Format renders v the way ECMAScript Number#toString does: shortest
// round-trip digits, plain decimal notation for 1e-6 <= |v| < 1e21 and
// exponent notation (1e+21, 1.5e-7) outside that range.
func Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// Covers -0 as well.
		return "0"
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	mant, expStr, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expStr)

	k := len(digits)
	n := exp + 1 // position of the decimal point relative to digits

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	m := digits[:1]
	if k > 1 {
		m += "." + digits[1:]
	}
	e := n - 1
	expSign := "+"
	if e < 0 {
		expSign = "-"
		e = -e
	}
	return sign + m + "e" + expSign + strconv.Itoa(e)
}

// ParsePrefix parses the longest decimal literal at the start of s, after
// skipping leading whitespace. It accepts an optional sign, digits with an
// optional fraction, an optional exponent, and "Infinity". Trailing text is
// ignored. ok is false when s has no numeric prefix.
func ParsePrefix(s string) (v float64, ok bool) {
	s = strings.TrimLeftFunc(s, isJSSpace)

	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	start := i
	intDigits := scanDigits(s, i)
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = scanDigits(s, i+1)
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := scanDigits(s, j); n > 0 {
			i = j + n
		}
	}

	// ParseFloat reports ErrRange for overflow but still returns ±Inf or 0,
	// which is what we want.
	v, _ = strconv.ParseFloat(s[start:i], 64)
	if neg {
		v = -v
	}
	return v, true
}

func scanDigits(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		n++
	}
	return n
}

// isJSSpace reports whether r is an ECMAScript StrWhiteSpaceChar: the
// WhiteSpace and LineTerminator code points. U+0085 is not one of them.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00A0', '\u1680', '\u2028', '\u2029', '\u202F', '\u205F', '\u3000', '\uFEFF':
		return true
	}
	return r >= '\u2000' && r <= '\u200A'
}
