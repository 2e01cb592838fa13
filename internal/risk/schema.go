package risk

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/majinstudio/labvitals/constants"
)

// BuildVitalsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map describing the /predict payload: every canonical field
// optional, numeric, and inside its plausibility window.
func BuildVitalsJSONSchema() map[string]any {
	props := make(map[string]any, len(constants.AllFields))
	for _, f := range constants.AllFields {
		r := constants.ValidRanges[f]
		props[string(f)] = map[string]any{
			"type":    "number",
			"minimum": r.Lo,
			"maximum": r.Hi,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateVitalsJSON validates raw against the vitals schema and
// decodes it.
func ValidateVitalsJSON(raw []byte) (Vitals, error) {
	b, err := json.Marshal(BuildVitalsJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("vitals.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("vitals.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("payload does not match schema: %w", err)
	}

	var v Vitals
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode vitals: %w", err)
	}
	return v, nil
}
