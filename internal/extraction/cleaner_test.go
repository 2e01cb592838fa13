package extraction

import "testing"

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
		ok   bool
	}{
		{"plain integer", "105", 105, true},
		{"unit suffix", "140 mg/dL", 140, true},
		{"qualifier prefix", "High 7.2", 7.2, true},
		{"qualifier and unit", "Low 11.8 g/dL", 11.8, true},
		{"mmol unit", "5.4 mmol/L", 5.4, true},
		{"extra dots keep last", "1.2.3", 12.3, true},
		{"numeric input", 98.6, 98.6, true},
		{"integer input", 105, 105, true},
		{"letters only", "abc", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"dot only", ".", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanValue(tt.raw)
			if ok != tt.ok {
				t.Fatalf("CleanValue(%v) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("CleanValue(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
