package detect

import "strings"

// ExtractJSONObject returns the first balanced {...} substring of s.
// The model is asked for bare JSON but routinely wraps it in prose or
// markdown fences, so the output format is not treated as a contract.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// FirstInt returns the first run of digits in s as an integer clamped to
// [0, 100]. Returns 0 when s contains no digits; never fails.
func FirstInt(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return clampScore(s[start:i])
		}
	}
	if start >= 0 {
		return clampScore(s[start:])
	}
	return 0
}

func clampScore(digits string) int {
	// More than three digits is already out of range.
	if len(digits) > 3 {
		return 100
	}
	n := 0
	for i := 0; i < len(digits); i++ {
		n = n*10 + int(digits[i]-'0')
	}
	if n > 100 {
		return 100
	}
	return n
}
