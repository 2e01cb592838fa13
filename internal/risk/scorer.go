package risk

import (
	"context"
	"fmt"
	"log/slog"
)

// Risk levels.
const (
	RiskHealthy = "Healthy"
	RiskHigh    = "High Risk"
	RiskUnknown = "Unknown"
)

// Condition names.
const (
	CondDiabetes = "Diabetes"
	CondHeart    = "Heart"
	CondAnemia   = "Anemia"
)

type Prediction struct {
	Condition string `json:"condition"`
	Risk      string `json:"risk"`
	Reason    string `json:"reason"`
}

type Report struct {
	Predictions []Prediction `json:"predictions"`
	Suggestions []string     `json:"suggestions"`
}

// ClassifierSource hands out a classifier by condition name, or nil
// when none is available. The scorer treats a nil classifier as
// "rules only".
type ClassifierSource interface {
	Get(name string) Classifier
}

type Scorer struct {
	models ClassifierSource
	logger *slog.Logger
}

// NewScorer builds a rule-based scorer. models may be nil, in which
// case no classifier is ever consulted.
func NewScorer(models ClassifierSource, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{models: models, logger: logger}
}

// Score evaluates each condition against the provided vitals. Rules run
// first; a classifier is consulted only when the rules pass as healthy,
// and can only escalate, never clear. Conditions with no relevant input
// come back Unknown.
func (s *Scorer) Score(ctx context.Context, v Vitals) Report {
	var preds []Prediction
	var suggs []string
	hasData := false
	age := float32(v.GetOr("age", 45))

	// Diabetes
	gluc, hasGluc := v.Get("glucose")
	hba1c, hasA1c := v.Get("hba1c")
	status, reason := RiskUnknown, "Insufficient Data"
	if hasGluc || hasA1c {
		hasData = true
		status, reason = RiskHealthy, "Normal Levels"
		switch {
		case (hasGluc && gluc > 140) || (hasA1c && hba1c > 6.5):
			status, reason = RiskHigh, "Elevated Glucose/A1C"
			suggs = append(suggs, "Diabetes: consult a diabetologist. Reduce sugar intake and monitor blood glucose.")
		case s.positive(ctx, "diabetes", []float32{
			float32(v.GetOr("glucose", 100)),
			float32(v.GetOr("hba1c", 5.5)),
			age,
			25, // BMI is never extracted; fixed population fallback
		}):
			status, reason = RiskHigh, "AI Pattern Detection"
			suggs = append(suggs, "Diabetes pattern: the classifier detects subtle patterns. Consider a preventive checkup.")
		}
	}
	preds = append(preds, Prediction{Condition: CondDiabetes, Risk: status, Reason: reason})

	// Heart
	chol, hasChol := v.Get("cholesterol")
	ldl, hasLDL := v.Get("ldl")
	status, reason = RiskUnknown, "Insufficient Data"
	if hasChol || hasLDL {
		hasData = true
		status, reason = RiskHealthy, "Normal Lipid Profile"
		switch {
		case (hasChol && chol > 240) || (hasLDL && ldl > 160):
			status, reason = RiskHigh, "High Cholesterol/LDL"
			suggs = append(suggs, "Heart: limit saturated fats (red meat, fried food). Consider cardio exercise.")
		case s.positive(ctx, "cardio", []float32{
			float32(v.GetOr("cholesterol", 180)),
			float32(v.GetOr("ldl", 100)),
			float32(v.GetOr("hdl", 50)),
			float32(v.GetOr("triglycerides", 150)),
			age,
		}):
			status, reason = RiskHigh, "AI Anomaly Detected"
			suggs = append(suggs, "Heart pattern: the classifier found potential risks. Monitor blood pressure and lipids.")
		}
	}
	preds = append(preds, Prediction{Condition: CondHeart, Risk: status, Reason: reason})

	// Anemia
	hb, hasHb := v.Get("hemoglobin")
	status, reason = RiskUnknown, "Insufficient Data"
	if hasHb {
		hasData = true
		switch {
		case hb < 13:
			status, reason = RiskHigh, fmt.Sprintf("Low Hemoglobin (%g)", hb)
			suggs = append(suggs, "Anemia: increase iron-rich foods (spinach, dates, red meat). Consult a doctor.")
		case s.positive(ctx, "anemia", []float32{
			float32(hb),
			float32(v.GetOr("red_blood_cells", 4.5)),
			age,
		}):
			status, reason = RiskHigh, "AI Flagged"
			suggs = append(suggs, "Anemia pattern: further investigation suggested despite normal levels.")
		default:
			status, reason = RiskHealthy, "Normal Levels"
		}
	}
	preds = append(preds, Prediction{Condition: CondAnemia, Risk: status, Reason: reason})

	if !hasData {
		suggs = []string{"No readable data found. Please enter values manually or upload a clearer file."}
	} else if len(suggs) == 0 {
		suggs = append(suggs, "Your vitals look healthy. Keep up the good lifestyle.")
	}

	return Report{Predictions: preds, Suggestions: suggs}
}

// positive consults the named classifier and reports a positive
// classification. Any failure (no source, no model, inference error)
// degrades to false: rules already passed, so the answer stays Healthy.
func (s *Scorer) positive(ctx context.Context, name string, features []float32) bool {
	if s.models == nil {
		return false
	}
	m := s.models.Get(name)
	if m == nil {
		return false
	}
	label, err := m.Predict(ctx, features)
	if err != nil {
		s.logger.Warn("classifier inference failed", "model", name, "error", err)
		return false
	}
	return label == 1
}
