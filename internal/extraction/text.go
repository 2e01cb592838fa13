package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/majinstudio/labvitals/constants"
)

var (
	// reference-range shapes removed before number extraction
	reNumSpan   = regexp.MustCompile(`\d+\s*-\s*\d+`)
	reThreshold = regexp.MustCompile(`[<>]\s*\d+`)
	reNumberTok = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
)

// ScanText extracts canonical fields from line-oriented text (OCR
// output, plain-text PDF pages).
//
// Each line is lowercased, then numeric spans of the form "N - N" and
// threshold annotations "< N" / "> N" are stripped so reference-range
// boundaries are never mistaken for the measured value. If the stripped
// line contains any synonym of a field (plain substring; fuzzy
// matching on whole OCR lines is unreliable), the standalone numeric
// tokens on the line are checked in order of appearance and the first
// one inside the field's valid range is recorded. A line may satisfy
// several fields; earlier lines win over later ones.
func ScanText(text string) Result {
	res := Result{}
	for _, line := range strings.Split(text, "\n") {
		clean := strings.ToLower(line)
		clean = reNumSpan.ReplaceAllString(clean, "")
		clean = reThreshold.ReplaceAllString(clean, "")

		var numbers []string
		for _, f := range constants.AllFields {
			if res.Has(f) {
				continue
			}
			if !lineMentions(clean, f) {
				continue
			}
			if numbers == nil {
				numbers = reNumberTok.FindAllString(clean, -1)
			}
			for _, tok := range numbers {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					continue
				}
				if constants.InRange(f, v) {
					res.Record(f, v)
					break
				}
			}
		}
	}
	return res
}

func lineMentions(line string, f constants.Field) bool {
	for _, syn := range constants.Synonyms[f] {
		if strings.Contains(line, syn) {
			return true
		}
	}
	return false
}
