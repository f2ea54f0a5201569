package textract

import (
	"regexp"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// TD3 machine-readable zone lines: 44 characters, line one starts with
// the document code "P". OCR often drops trailing fillers, so anything
// from 40 characters up is accepted.
var (
	mrzLine1Re = regexp.MustCompile(`^P[A-Z<][A-Z<]{3}[A-Z<]{35,40}$`)
	mrzLine2Re = regexp.MustCompile(`^[A-Z0-9<]{40,44}$`)
)

// applyMRZ parses the passport machine-readable zone when present and
// fills any fields the visual inspection zone pass left missing. The
// MRZ is machine-printed and survives OCR better than stylised labels,
// which makes it a reliable second source for the identity core.
func applyMRZ(raw map[string]string, text string) {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines)-1; i++ {
		l1 := strings.ReplaceAll(strings.TrimSpace(lines[i]), " ", "")
		l2 := strings.ReplaceAll(strings.TrimSpace(lines[i+1]), " ", "")
		if mrzLine1Re.MatchString(l1) && mrzLine2Re.MatchString(l2) {
			parseMRZNames(raw, l1)
			parseMRZData(raw, l2)
			return
		}
	}
}

func mrzMissing(raw map[string]string, field string) bool {
	v, ok := raw[field]
	return !ok || v == "" || v == domain.MissingValue
}

// parseMRZNames extracts surname and given names from line one:
// P<NNNSURNAME<<GIVEN<NAMES<<<...
func parseMRZNames(raw map[string]string, line string) {
	if len(line) < 6 {
		return
	}
	names := line[5:]
	surname, given, found := strings.Cut(names, "<<")
	if !found {
		return
	}
	if mrzMissing(raw, "surname") {
		raw["surname"] = mrzField(surname)
	}
	if mrzMissing(raw, "given_names") {
		raw["given_names"] = mrzField(given)
	}
}

// parseMRZData extracts the passport number, nationality, birth date,
// sex and expiry date from line two.
func parseMRZData(raw map[string]string, line string) {
	if len(line) < 28 {
		return
	}
	if mrzMissing(raw, "passport_number") {
		if num := mrzField(line[0:9]); num != "" {
			raw["passport_number"] = num
		}
	}
	if mrzMissing(raw, "nationality") {
		if nat := mrzField(line[10:13]); len(nat) == 3 {
			raw["nationality"] = nat
		}
	}
	if mrzMissing(raw, "date_of_birth") {
		if d := mrzDate(line[13:19]); d != "" {
			raw["date_of_birth"] = d
		}
	}
	if mrzMissing(raw, "gender") {
		switch line[20] {
		case 'M':
			raw["gender"] = "Male"
		case 'F':
			raw["gender"] = "Female"
		}
	}
	if mrzMissing(raw, "date_of_expiry") && len(line) >= 27 {
		if d := mrzDate(line[21:27]); d != "" {
			raw["date_of_expiry"] = d
		}
	}
}

// mrzField strips filler characters and turns internal fillers into
// spaces.
func mrzField(s string) string {
	s = strings.Trim(s, "<")
	return strings.TrimSpace(strings.ReplaceAll(s, "<", " "))
}

// mrzDate converts a YYMMDD zone date into DD/MM/YYYY. Two-digit years
// below 50 read as 2000s, matching the date normalizer's pivot.
func mrzDate(s string) string {
	if len(s) != 6 || strings.ContainsAny(s, "<") {
		return ""
	}
	yy, mm, dd := s[0:2], s[2:4], s[4:6]
	century := "19"
	if yy < "50" {
		century = "20"
	}
	return dd + "/" + mm + "/" + century + yy
}
