package query

import "strings"

// cityCodes maps common destination names to IATA city/airport codes.
// Lookups are best-effort: names outside this table are dropped rather
// than treated as errors.
var cityCodes = map[string]string{
	"paris":      "CDG",
	"rome":       "FCO",
	"dubai":      "DXB",
	"new york":   "JFK",
	"amsterdam":  "AMS",
	"barcelona":  "BCN",
	"madrid":     "MAD",
	"berlin":     "BER",
	"prague":     "PRG",
	"vienna":     "VIE",
	"budapest":   "BUD",
	"copenhagen": "CPH",
	"stockholm":  "ARN",
	"oslo":       "OSL",
	"helsinki":   "HEL",
	"zurich":     "ZUR",
	"geneva":     "GVA",
	"milan":      "MXP",
	"venice":     "VCE",
	"florence":   "FLR",
	"naples":     "NAP",
	"athens":     "ATH",
	"istanbul":   "IST",
	"lisbon":     "LIS",
	"porto":      "OPO",
	"dublin":     "DUB",
	"edinburgh":  "EDI",
	"reykjavik":  "KEF",
	"valencia":   "VLC",
	"mallorca":   "PMI",
}

// destinationNames is the readable-name lookup for codes surfaced in
// packages and notifications.
var destinationNames = map[string]string{
	"CDG": "Paris",
	"FCO": "Rome",
	"DXB": "Dubai",
	"JFK": "New York",
	"AMS": "Amsterdam",
	"BCN": "Barcelona",
	"MAD": "Madrid",
	"BER": "Berlin",
	"PRG": "Prague",
	"VIE": "Vienna",
	"BUD": "Budapest",
	"CPH": "Copenhagen",
	"ARN": "Stockholm",
	"OSL": "Oslo",
	"HEL": "Helsinki",
	"ZUR": "Zurich",
	"GVA": "Geneva",
	"MXP": "Milan",
	"VCE": "Venice",
	"FLR": "Florence",
	"NAP": "Naples",
	"ATH": "Athens",
	"IST": "Istanbul",
	"LIS": "Lisbon",
	"OPO": "Porto",
	"DUB": "Dublin",
	"EDI": "Edinburgh",
	"KEF": "Reykjavik",
	"VLC": "Valencia",
	"PMI": "Mallorca",
	"LCA": "Cyprus",
}

// ParseDestinations splits a comma-separated destination string into
// IATA codes. Tokens that are already 3-letter uppercase codes pass
// through; known city names resolve via the static table; anything
// else is silently dropped.
func ParseDestinations(s string) []string {
	if s == "" {
		return nil
	}

	var codes []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if isAirportCode(token) {
			codes = append(codes, token)
			continue
		}
		if code, ok := cityCodes[strings.ToLower(token)]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func isAirportCode(token string) bool {
	if len(token) != 3 {
		return false
	}
	for _, r := range token {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// DestinationName converts an airport/city code to a readable name,
// falling back to the code itself.
func DestinationName(code string) string {
	if name, ok := destinationNames[code]; ok {
		return name
	}
	return code
}
