package constants

// Field is a canonical lab measurement name.
type Field string

const (
	Glucose       Field = "glucose"
	HbA1c         Field = "hba1c"
	Hemoglobin    Field = "hemoglobin"
	Cholesterol   Field = "cholesterol"
	LDL           Field = "ldl"
	HDL           Field = "hdl"
	Triglycerides Field = "triglycerides"
	RedBloodCells Field = "red_blood_cells"
	Age           Field = "age"
)

// AllFields is the canonical enumeration order. Matching walks this slice,
// so for labels that could match more than one field the earlier field wins.
var AllFields = []Field{
	Glucose,
	HbA1c,
	Hemoglobin,
	Cholesterol,
	LDL,
	HDL,
	Triglycerides,
	RedBloodCells,
	Age,
}

// Synonyms maps each field to the lowercase alias strings recognized for it.
// Aliases include common report abbreviations and frequent OCR misspellings.
var Synonyms = map[Field][]string{
	Glucose:       {"glucose", "glu", "sugar", "fbs", "bsl", "fasting blood sugar", "blood glucose", "rbs", "ppbs"},
	HbA1c:         {"hba1c", "a1c", "glycated", "haemoglobin a1c", "hb a1c"},
	Hemoglobin:    {"hemoglobin", "hgb", "hb", "haemoglobin"},
	Cholesterol:   {"cholesterol", "chol", "total cholesterol", "t.chol", "chorestrol", "chorestall"},
	LDL:           {"ldl", "bad cholesterol", "low density", "ldl-c"},
	HDL:           {"hdl", "good cholesterol", "high density", "hdl-c"},
	Triglycerides: {"triglycerides", "trigs", "tg", "tgl"},
	RedBloodCells: {"red_blood_cells", "rbc", "erythrocytes", "red blood", "total rbc"},
	Age:           {"age", "years", "y/o", "yrs", "patient age"},
}

// IgnoreKeywords veto any label that contains one of them, regardless of
// synonym overlap. This keeps reference-range bounds and metadata columns
// from being read as patient values.
var IgnoreKeywords = []string{"ref", "range", "limit", "min", "max", "interval", "method", "date", "time", "units"}

// Range is an inclusive plausibility window for a field. Values outside are
// discarded, never clamped.
type Range struct {
	Lo, Hi float64
}

// ValidRanges bounds each field. The windows are deliberately generous:
// they reject unit mix-ups and OCR garbage, not abnormal results.
var ValidRanges = map[Field]Range{
	Glucose:       {20, 2000},
	HbA1c:         {2, 25},
	Hemoglobin:    {2, 30},
	Cholesterol:   {50, 1000},
	LDL:           {10, 800},
	HDL:           {5, 300},
	Triglycerides: {10, 3000},
	RedBloodCells: {0.5, 15},
	Age:           {1, 120},
}

// InRange reports whether v is a plausible value for f.
func InRange(f Field, v float64) bool {
	r, ok := ValidRanges[f]
	if !ok {
		return false
	}
	return v >= r.Lo && v <= r.Hi
}

func FieldsAsStrings() []string {
	out := make([]string, len(AllFields))
	for i, f := range AllFields {
		out[i] = string(f)
	}
	return out
}
