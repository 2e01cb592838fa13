package extraction

import (
	"strings"

	"github.com/adrg/strutil"

	"github.com/majinstudio/labvitals/constants"
)

// fuzzyCutoff is the minimum Ratcliff/Obershelp similarity for the
// approximate matching pass.
const fuzzyCutoff = 0.80

var ratcliff strutil.StringMetric = ratcliffObershelp{}

// MatchKey maps an arbitrary label string to a canonical field.
//
// The label is lowercased, underscores become spaces, and surrounding
// whitespace is trimmed. A label containing any ignore-keyword never
// matches: reference-range and metadata columns must not be read as
// patient values, no matter how well they resemble a synonym.
//
// Matching runs in two passes over the fixed field order: an exact
// substring pass over each field's synonyms, then a whole-label fuzzy
// pass at the 0.80 cutoff to absorb typos and OCR damage. The first
// field to hit wins in both passes.
func MatchKey(label string) (constants.Field, bool) {
	norm := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(label), "_", " "))
	if norm == "" {
		return "", false
	}
	for _, bad := range constants.IgnoreKeywords {
		if strings.Contains(norm, bad) {
			return "", false
		}
	}
	for _, f := range constants.AllFields {
		for _, syn := range constants.Synonyms[f] {
			if strings.Contains(norm, syn) {
				return f, true
			}
		}
	}
	for _, f := range constants.AllFields {
		for _, syn := range constants.Synonyms[f] {
			if strutil.Similarity(norm, syn, ratcliff) >= fuzzyCutoff {
				return f, true
			}
		}
	}
	return "", false
}
