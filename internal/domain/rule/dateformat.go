package rule

import (
	"errors"
	"fmt"
	"strings"
)

var errUntranslatableDate = errors.New("unsupported date pattern")

// dateTokens maps a run of one pattern letter, keyed by letter and run
// length, to its Go layout element. A zero length key is the fallback
// used for any run not listed explicitly. Numeric fields use the
// unpadded elements, which accept both "5" and "05" when parsing.
var dateTokens = map[byte]map[int]string{
	'd': {1: "2", 2: "2"},
	'M': {1: "1", 2: "1", 3: "Jan", 4: "January", 0: "January"},
	'y': {2: "06", 0: "2006"},
	'H': {1: "15", 2: "15"},
	'h': {1: "3", 2: "3"},
	'm': {1: "4", 2: "4"},
	's': {1: "5", 2: "5"},
	'a': {0: "PM"},
	'E': {4: "Monday", 0: "Mon"},
	'Z': {0: "-0700"},
	'X': {1: "-07", 2: "-0700", 3: "-07:00"},
	'z': {0: "MST"},
}

// TranslateDateFormat converts a day/month/year style descriptor such as
// "dd-MMM-yy" or "dd/MM/yyyy HH:mm" into a time layout. The bool reports
// whether the descriptor carries a year. Quoted text ('at') is copied
// literally and '' yields a single quote.
func TranslateDateFormat(pattern string) (string, bool, error) {
	if pattern == "" {
		return "", false, fmt.Errorf("%w: empty", errUntranslatableDate)
	}

	var b strings.Builder
	hasYear := false

	for i := 0; i < len(pattern); {
		c := pattern[i]

		switch {
		case c == '\'':
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				return "", false, fmt.Errorf("%w: unterminated quote in %q", errUntranslatableDate, pattern)
			}
			literal := pattern[i+1 : i+1+end]
			if strings.ContainsAny(literal, "0123456789") {
				return "", false, fmt.Errorf("%w: digits in literal %q", errUntranslatableDate, literal)
			}
			b.WriteString(literal)
			i += end + 2

		case isASCIILetter(c):
			run := 1
			for i+run < len(pattern) && pattern[i+run] == c {
				run++
			}
			forms, ok := dateTokens[c]
			if !ok {
				return "", false, fmt.Errorf("%w: field %q in %q", errUntranslatableDate, string(c), pattern)
			}
			elem, ok := forms[run]
			if !ok {
				elem, ok = forms[0]
			}
			if !ok {
				return "", false, fmt.Errorf("%w: %q repeated %d times", errUntranslatableDate, string(c), run)
			}
			if c == 'y' {
				hasYear = true
			}
			b.WriteString(elem)
			i += run

		case c >= '0' && c <= '9':
			// A bare digit would be read by time.Parse as a layout element.
			return "", false, fmt.Errorf("%w: digit in %q", errUntranslatableDate, pattern)

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), hasYear, nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
