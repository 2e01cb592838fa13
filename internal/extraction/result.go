// Package extraction turns noisy document content (nested JSON trees,
// tables, OCR text) into a canonical map of validated lab values.
//
// All scanners are pure functions over the process-wide tables in the
// constants package: same input, same output, no state carried between
// calls. Individual values that fail cleaning, matching or range
// validation are dropped silently; absence of a field is meaningful to
// the caller.
package extraction

import (
	"github.com/majinstudio/labvitals/constants"
)

// Result maps canonical fields to the first validated value found for
// them in a document.
type Result map[constants.Field]float64

// Record stores v for f unless f is already set. The earliest valid
// value found in a document wins; later candidates are discarded.
func (r Result) Record(f constants.Field, v float64) bool {
	if _, ok := r[f]; ok {
		return false
	}
	r[f] = v
	return true
}

// Has reports whether f has already been recorded.
func (r Result) Has(f constants.Field) bool {
	_, ok := r[f]
	return ok
}

// AsStringMap flattens the result for JSON replies.
func (r Result) AsStringMap() map[string]float64 {
	out := make(map[string]float64, len(r))
	for f, v := range r {
		out[string(f)] = v
	}
	return out
}
