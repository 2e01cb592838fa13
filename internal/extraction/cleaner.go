package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// qualifier/unit tokens that routinely ride along with lab values
	reQualifiers = regexp.MustCompile(`high|low|mg/dl|g/dl|mmol/l`)
	reNonNumeric = regexp.MustCompile(`[^\d.]`)
)

// CleanValue normalizes a raw scalar into a float. It lowercases and
// trims the input, strips unit and qualifier tokens, drops every
// remaining non-digit/non-dot character, and collapses extra decimal
// points (thousands-separator noise) keeping the last one.
//
// Cleaning is best effort: it reports false on anything unparseable and
// never panics.
func CleanValue(raw any) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw)))
	s = reQualifiers.ReplaceAllString(s, "")
	s = reNonNumeric.ReplaceAllString(s, "")
	if n := strings.Count(s, "."); n > 1 {
		s = strings.Replace(s, ".", "", n-1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
