// Package normalize holds the pure field normalizers applied to every
// raw extracted value before it reaches a caller. Every function is total
// (returns its input unchanged when parsing is impossible) and idempotent.
package normalize

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

// DateFormat selects the canonical output separator for dates. The
// destination template dictates which one a caller needs.
type DateFormat string

const (
	DateSlash DateFormat = "DD/MM/YYYY"
	DateDash  DateFormat = "DD-MM-YYYY"
)

var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var (
	dmyNumericRe = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2}|\d{4})$`)
	ymdNumericRe = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	dMonYRe      = regexp.MustCompile(`^(\d{1,2})[\s/\-.]+([A-Za-z]{3,9})[\s/\-.]+(\d{2}|\d{4})$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

// Date converts day-month-year variants with /, - or . separators,
// two- or four-digit years, and day-month-name forms ("12 JAN 1990")
// into the requested canonical format. Unparseable input is returned
// unmodified.
func Date(s string, format DateFormat) string {
	v := strings.TrimSpace(s)
	if v == "" || v == "." {
		return s
	}

	var day, month, year int
	switch {
	case dmyNumericRe.MatchString(v):
		m := dmyNumericRe.FindStringSubmatch(v)
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year = expandYear(m[3])
	case ymdNumericRe.MatchString(v):
		m := ymdNumericRe.FindStringSubmatch(v)
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	case dMonYRe.MatchString(v):
		m := dMonYRe.FindStringSubmatch(v)
		mon, ok := monthNames[strings.ToUpper(m[2])[:3]]
		if !ok {
			return s
		}
		day, _ = strconv.Atoi(m[1])
		month = mon
		year = expandYear(m[3])
	default:
		return s
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return s
	}

	sep := "/"
	if format == DateDash {
		sep = "-"
	}
	return fmt.Sprintf("%02d%s%02d%s%04d", day, sep, month, sep, year)
}

// expandYear maps a two-digit year onto the 1900s or 2000s (pivot 50).
func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) == 4 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// EmiratesID rewrites a 15-digit national ID with the standard 3-4-7-1
// separator grouping. A 14-digit value missing its trailing check digit
// is padded with a placeholder digit and logged; anything else passes
// through unchanged.
func EmiratesID(s string) string {
	v := strings.TrimSpace(s)
	if v == "" || v == "." {
		return s
	}
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) == 14 {
		log.Printf("normalize.EmiratesID: 14-digit ID %q missing check digit, padding", v)
		digits += "0"
	}
	if len(digits) != 15 {
		return s
	}
	return fmt.Sprintf("%s-%s-%s-%s", digits[:3], digits[3:7], digits[7:14], digits[14:])
}

// Gender expands M/F abbreviations to full words; anything else passes
// through unchanged.
func Gender(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		return "Male"
	case "F", "FEMALE":
		return "Female"
	default:
		return s
	}
}

// uaeCountryCode is prepended to local mobile numbers.
const uaeCountryCode = "+971"

// Phone canonicalises a phone number: a 9-digit local number or a
// 10-digit number with a leading zero gains the UAE country code;
// numbers already carrying a country code (12+ digits) are only
// prefixed with +. Anything else passes through unchanged.
func Phone(s string) string {
	v := strings.TrimSpace(s)
	if v == "" || v == "." {
		return s
	}
	digits := nonDigitRe.ReplaceAllString(v, "")
	switch {
	case len(digits) == 9:
		return uaeCountryCode + digits
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return uaeCountryCode + digits[1:]
	case len(digits) >= 12:
		return "+" + digits
	default:
		return s
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims and squeezes runs of whitespace to single
// spaces; extraction backends apply it before pattern matching.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
