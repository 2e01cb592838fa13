// Package risk scores health risk from extracted lab values using
// fixed rule thresholds, optionally refined by pretrained classifiers.
package risk

// Vitals is a flat mapping of optional numeric inputs, keyed by
// canonical field name.
type Vitals map[string]float64

// Get returns the value and whether it was provided.
func (v Vitals) Get(key string) (float64, bool) {
	val, ok := v[key]
	return val, ok
}

// GetOr returns the value, or fallback when absent. Classifiers take a
// fixed, fully populated feature row, so missing secondary fields are
// substituted with population-typical values.
func (v Vitals) GetOr(key string, fallback float64) float64 {
	if val, ok := v[key]; ok {
		return val
	}
	return fallback
}
