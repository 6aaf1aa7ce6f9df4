package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultLeadDays is the fallback horizon when a brief's travel dates
// don't parse: search a single date 30 days out.
const defaultLeadDays = 30

var yearPattern = regexp.MustCompile(`\d{4}`)

// Layouts tried for natural-language dates like "October 25" or
// "25 October 2025".
var naturalLayouts = []string{
	"January 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"January 2",
	"2 January",
}

// ParseTravelDates parses a brief's travel-dates field into one or two
// date options. Accepted forms, in order of precedence:
//
//   - "October 25 - November 2 2025" (year inherited by the end date
//     from the start date when missing)
//   - "2006-01-02" (single date, one-way search)
//   - "2006-01-02 to 2006-01-02"
//
// Anything else falls back to a single date 30 days from now at
// midnight UTC, so the degraded behavior stays deterministic.
func (e *Expander) ParseTravelDates(s string) []time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return []time.Time{e.defaultDate()}
	}

	if strings.Contains(s, " - ") {
		if dates, ok := e.parseNaturalRange(s); ok {
			return dates
		}
	}

	if d, err := time.Parse("2006-01-02", s); err == nil {
		return []time.Time{d}
	}

	if strings.Contains(s, " to ") {
		parts := strings.SplitN(s, " to ", 2)
		start, err1 := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
		end, err2 := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil {
			return []time.Time{start, end}
		}
	}

	return []time.Time{e.defaultDate()}
}

func (e *Expander) parseNaturalRange(s string) ([]time.Time, bool) {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		return nil, false
	}

	start, ok := parseNatural(strings.TrimSpace(parts[0]), e.now().Year())
	if !ok {
		return nil, false
	}

	endText := strings.TrimSpace(parts[1])
	if !yearPattern.MatchString(endText) {
		// No year on the end date: inherit the start date's year.
		endText += " " + strconv.Itoa(start.Year())
	}
	end, ok := parseNatural(endText, start.Year())
	if !ok {
		return nil, false
	}

	return []time.Time{start, end}, true
}

func parseNatural(s string, defaultYear int) (time.Time, bool) {
	for _, layout := range naturalLayouts {
		d, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if d.Year() == 0 {
			d = time.Date(defaultYear, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
		return d, true
	}
	return time.Time{}, false
}

func (e *Expander) defaultDate() time.Time {
	d := e.now().AddDate(0, 0, defaultLeadDays)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
