package ocr

import (
	"strings"
	"testing"
)

func TestPageNeedsOCR(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty page", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"too short", "Page 1", true},
		{"long but no lab terms", strings.Repeat("lorem ipsum dolor sit amet ", 5), true},
		{"mentions a field", "Glucose (Fasting): 98 mg/dL measured at the lab", false},
		{"mentions an abbreviation", "Patient results follow. HDL measured within limits today.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageNeedsOCR(tt.text); got != tt.want {
				t.Fatalf("pageNeedsOCR(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStreamToText(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
10 700 Td
(Glucose) Tj
120 0 Td
(105 mg/dL) Tj
T*
(Cholesterol) Tj
(210) Tj
ET`)
	got := streamToText(stream)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), got)
	}
	if !strings.Contains(lines[0], "Glucose") || !strings.Contains(lines[0], "105 mg/dL") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Cholesterol") || !strings.Contains(lines[1], "210") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestStreamToTextTJArray(t *testing.T) {
	stream := []byte(`[(Hemo) -20 (globin) -20 (14.2)] TJ`)
	got := streamToText(stream)
	if !strings.Contains(got, "Hemo") || !strings.Contains(got, "globin") || !strings.Contains(got, "14.2") {
		t.Fatalf("got %q", got)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`paren \( inside \)`, "paren ( inside )"},
		{`back\\slash`, `back\slash`},
		{`tab\there`, "tab\there"},
		{`\101BC`, "ABC"}, // octal 101 = 'A'
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTidyLines(t *testing.T) {
	in := "Glucose    105\n\n   \nCholesterol\t210   mg/dL\n"
	want := "Glucose 105\nCholesterol 210 mg/dL"
	if got := tidyLines(in); got != want {
		t.Fatalf("tidyLines = %q, want %q", got, want)
	}
}
