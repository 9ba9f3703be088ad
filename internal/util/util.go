// Package util provides string helpers for player command arguments.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// SplitArgs splits a command line on whitespace. Double quotes group words
// and a doubled quote inside a quoted word is a literal quote.
// Input: challenge "Lt. Surge" 2
// Output: [challenge, Lt. Surge, 2]
func SplitArgs(line string) []string {
	var (
		args    []string
		b       strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			args = append(args, b.String())
		}
		b.Reset()
		started = false
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && quoted && i+1 < len(runes) && runes[i+1] == '"':
			b.WriteRune('"')
			i++
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			b.WriteRune(r)
			started = true
		}
	}
	flush()
	return args
}

// NormalizeName folds a display name for lookups: case, spacing and the
// accent in "Poké" are ignored.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "é", "e")
	return strings.Join(strings.Fields(s), " ")
}
