// internal/matching/experience.go
package matching

import (
	"time"

	"marketplace-workers/internal/models"
)

// dateLayouts are tried in order when parsing employment and birth dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
	"2006-01",
}

// TotalExperienceYears sums whole months across the employment history and
// converts to years. An open-ended current job runs until now; entries with
// unparsable dates are skipped rather than failing the calculation.
func TotalExperienceYears(history []models.EmploymentPeriod, now time.Time) float64 {
	months := 0
	for _, period := range history {
		from, ok := parseDate(period.Duration.From)
		if !ok {
			continue
		}

		to := now
		if !period.IsCurrentJob {
			parsed, ok := parseDate(period.Duration.To)
			if !ok {
				continue
			}
			to = parsed
		}

		months += wholeMonthsBetween(from, to)
	}
	return float64(months) / 12
}

// wholeMonthsBetween counts completed calendar months from a to b.
func wholeMonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
