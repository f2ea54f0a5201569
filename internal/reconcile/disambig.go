// Package reconcile matches extracted documents to spreadsheet rows and
// merges each matched group into one reconciled record.
package reconcile

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

var (
	digitRe     = regexp.MustCompile(`\d`)
	separatorRe = regexp.MustCompile(`[/\\-]`)
	// A unified number is a bare digit run, usually 8-11 digits.
	unifiedShapeRe = regexp.MustCompile(`^\d{8,11}$`)
	rescueDigitRe  = regexp.MustCompile(`\b(\d{8,11})\b`)
)

func digitsOnly(s string) string {
	return strings.Join(digitRe.FindAllString(s, -1), "")
}

// looksLikeFileNumber reports whether a value has the visa file shape:
// separator-delimited segments with leading digits 10 or 20.
func looksLikeFileNumber(v string) bool {
	if !separatorRe.MatchString(v) {
		return false
	}
	digits := digitsOnly(v)
	return strings.HasPrefix(digits, "10") || strings.HasPrefix(digits, "20")
}

// looksLikeUnified reports whether a value has the unified number shape:
// a separator-free 8-11 digit run.
func looksLikeUnified(v string) bool {
	return unifiedShapeRe.MatchString(v)
}

// ResolveUnifiedFileConfusion untangles the two visa identifiers that
// extraction backends most often cross: the unified number (a bare digit
// run) and the visa file number (slash-separated, leading 10 or 20).
// Applied to every visa field map before matching.
func ResolveUnifiedFileConfusion(fm domain.FieldMap) {
	unified := fm.Get("unified_no")
	file := fm.Get("visa_file_number")

	// Both present but clearly crossed.
	if fm.IsSet("unified_no") && fm.IsSet("visa_file_number") &&
		looksLikeFileNumber(unified) && looksLikeUnified(file) {
		fm["unified_no"], fm["visa_file_number"] = file, unified
		log.Printf("reconcile: swapped crossed unified_no and visa_file_number")
		return
	}

	// A file-shaped value sitting alone in the unified slot.
	if fm.IsSet("unified_no") && looksLikeFileNumber(unified) {
		if !fm.IsSet("visa_file_number") {
			fm["visa_file_number"] = unified
			log.Printf("reconcile: moved file-shaped value out of unified_no")
		}
		fm["unified_no"] = domain.MissingValue
		unified = domain.MissingValue
	}

	// The unified slot holding the file number with its separators
	// stripped out. The value is known wrong: replace it with a distinct
	// digit run from another field, or reset it.
	if fm.IsSet("unified_no") && fm.IsSet("visa_file_number") {
		fileDigits := digitsOnly(fm.Get("visa_file_number"))
		if fm.Get("unified_no") == fileDigits {
			fm["unified_no"] = domain.MissingValue
			if m := rescueUnified(fm, fileDigits); m != "" {
				fm["unified_no"] = m
				log.Printf("reconcile: unified_no duplicated the file number, replaced from another field")
			} else {
				log.Printf("reconcile: cleared unified_no, it duplicated the file number")
			}
			unified = fm.Get("unified_no")
		}
	}

	// Separators inside an otherwise unified-shaped value: strip them
	// when at least eight digits survive, reset otherwise.
	if fm.IsSet("unified_no") && separatorRe.MatchString(unified) && !looksLikeFileNumber(unified) {
		if digits := digitsOnly(unified); len(digits) >= 8 {
			fm["unified_no"] = digits
		} else {
			fm["unified_no"] = domain.MissingValue
			log.Printf("reconcile: cleared unified_no, too few digits after separator strip")
		}
	}

	// Rescue pass: a missing unified number can sometimes be recovered
	// from a digit run mis-filed under another field.
	if !fm.IsSet("unified_no") {
		if m := rescueUnified(fm, digitsOnly(fm.Get("visa_file_number"))); m != "" {
			fm["unified_no"] = m
			log.Printf("reconcile: rescued unified_no from another field")
		}
	}

	// The file slot must keep its separators; a bare digit run there is
	// not a file number.
	file = fm.Get("visa_file_number")
	if fm.IsSet("visa_file_number") && !separatorRe.MatchString(file) {
		if looksLikeUnified(file) && !fm.IsSet("unified_no") {
			fm["unified_no"] = file
			log.Printf("reconcile: reclassified bare digits in visa_file_number as unified_no")
		}
		fm["visa_file_number"] = domain.MissingValue
	}
}

// rescueUnified scans every field except the two identifier slots for a
// separator-free 8-11 digit run that could serve as the unified number.
// Runs equal to exclude or carrying a file-number prefix are not
// candidates. Fields are visited in sorted order so the outcome does not
// depend on map iteration.
func rescueUnified(fm domain.FieldMap, exclude string) string {
	fields := make([]string, 0, len(fm))
	for f := range fm {
		if f == "unified_no" || f == "visa_file_number" {
			continue
		}
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if !fm.IsSet(f) {
			continue
		}
		v := fm.Get(f)
		if separatorRe.MatchString(v) {
			continue
		}
		m := rescueDigitRe.FindString(v)
		if m == "" || m == exclude || strings.HasPrefix(m, "10") || strings.HasPrefix(m, "20") {
			continue
		}
		return m
	}
	return ""
}
