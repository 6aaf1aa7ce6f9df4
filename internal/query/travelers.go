package query

import (
	"regexp"
	"strconv"
	"strings"

	"travelaigent.app/agent/internal/model"
)

var (
	adultsPattern   = regexp.MustCompile(`(\d+)\s*adult`)
	childrenPattern = regexp.MustCompile(`(\d+)\s*child`)
	peoplePattern   = regexp.MustCompile(`(\d+)\s*people`)
)

// ParseTravelers extracts adult/child counts from free text like
// "2 adults, 2 children" or "4 people". Defaults come from the family
// profile when nothing matches.
//
// A stated total of exactly five maps to the profile's five-traveler
// split (historically 2 adults + 3 children: the optional teen joining
// the trip). This is a per-family rule carried in configuration, not a
// general heuristic.
func (e *Expander) ParseTravelers(s string) model.Travelers {
	result := model.Travelers{
		Adults:   e.family.DefaultAdults,
		Children: e.family.DefaultChildren,
	}

	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return result
	}

	if m := adultsPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Adults = n
		}
	}
	if m := childrenPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Children = n
		}
	}
	if m := peoplePattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n == 5 {
			result.Adults = e.family.FiveTravelerAdults
			result.Children = e.family.FiveTravelerChildren
		}
	}

	return result
}
