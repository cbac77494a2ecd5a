package extract

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jonesrussell/gotenders/internal/domain"
)

// Source date layouts. The portal renders listing dates as "31/07/2025" and
// detail dates as long-form "Thursday, 31 July 2025 - 10:00".
const (
	listingDateLayout = "02/01/2006"
	longDateLayout    = "2 January 2006"
)

var (
	// closingDateTimeRegex matches "31 July 2025 - 10:00" inside the detail
	// text, ignoring the weekday prefix.
	closingDateTimeRegex = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})\s*-\s*(\d{1,2}:\d{2})`)
	// dayMonthYearRegex matches "15 June 2025" with or without a weekday.
	dayMonthYearRegex = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})`)
)

// ParseClosingDateTime splits a detail closing value such as
// "Thursday, 31 July 2025 - 10:00" into a date (YYYY/MM/DD) and a time
// (HH:MM). When the value does not match any accepted format the raw string
// is returned as the date with an empty time, so validation downstream can
// warn instead of the value being silently dropped.
func ParseClosingDateTime(raw string) (date, clock string) {
	if raw == "" {
		return "", ""
	}

	match := closingDateTimeRegex.FindStringSubmatch(raw)
	if match == nil {
		return raw, ""
	}

	parsed, err := parseLongDate(match[1], match[2], match[3])
	if err != nil {
		return raw, ""
	}

	return parsed.Format(domain.DateLayout), match[4]
}

// ParseDayMonthYear normalizes a long-form date such as "Sunday, 15 June
// 2025" to YYYY/MM/DD, preserving the raw string when it cannot be parsed.
func ParseDayMonthYear(raw string) string {
	if raw == "" {
		return ""
	}

	match := dayMonthYearRegex.FindStringSubmatch(raw)
	if match == nil {
		return raw
	}

	parsed, err := parseLongDate(match[1], match[2], match[3])
	if err != nil {
		return raw
	}

	return parsed.Format(domain.DateLayout)
}

// ParseListingDate parses a summary-row advertised date ("31/07/2025").
func ParseListingDate(raw string) (time.Time, error) {
	return time.Parse(listingDateLayout, raw)
}

// parseLongDate assembles day, month name, and year into a time.Time.
func parseLongDate(day, monthName, year string) (time.Time, error) {
	return time.Parse(longDateLayout, fmt.Sprintf("%s %s %s", day, monthName, year))
}
