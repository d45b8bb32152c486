// Package dates converts customer-entered sail dates into the canonical
// ISO form and into the display form used by the scraped dataset.
//
// Neither direction validates calendar correctness: "2025-13-40" passes
// through ToISO unchanged and ToDisplayDate maps an unknown month to Jan.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// monthAbbrev is indexed by month number minus one.
var monthAbbrev = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ToISO normalizes a date to YYYY-MM-DD. Values already in that form are
// returned as is, M/D/YYYY and MM/DD/YYYY are read month first, and
// anything else comes back trimmed but otherwise untouched.
func ToISO(value string) string {
	v := strings.TrimSpace(value)
	if isoPattern.MatchString(v) {
		return v
	}

	m := slashPattern.FindStringSubmatch(v)
	if m == nil {
		return v
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
}

// ToDisplayDate formats YYYY-MM-DD as "YYYY Mon DD". It returns "" when
// the input is not three dash-separated parts.
func ToDisplayDate(isoDate string) string {
	parts := strings.Split(strings.TrimSpace(isoDate), "-")
	if len(parts) != 3 {
		return ""
	}

	year, month, day := parts[0], parts[1], parts[2]

	abbrev := monthAbbrev[0]
	if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= 12 {
		abbrev = monthAbbrev[n-1]
	}

	if len(day) < 2 {
		day = strings.Repeat("0", 2-len(day)) + day
	}

	return year + " " + abbrev + " " + day
}
