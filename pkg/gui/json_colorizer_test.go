package gui

import (
	"regexp"
	"strings"
	"testing"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestColorizerJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{
			name:     "string value",
			input:    `{"name": "EngineSpeed"}`,
			contains: []string{"name", "EngineSpeed"},
		},
		{
			name:     "number",
			input:    `{"upper_limit": 8000}`,
			contains: []string{"upper_limit", "8000"},
		},
		{
			name:     "null",
			input:    `{"description": null}`,
			contains: []string{"description", "null"},
		},
		{
			name:     "nested",
			input:    "{\n  \"details\": {\n    \"Datatype\": \"UWORD\"\n  }\n}",
			contains: []string{"details", "Datatype", "UWORD"},
		},
	}

	c := newColorizer("monokai")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := c.JSON(tt.input)
			if !strings.Contains(out, "\033[") {
				t.Errorf("expected ANSI codes in %q", out)
			}
			plain := stripANSI(out)
			for _, want := range tt.contains {
				if !strings.Contains(plain, want) {
					t.Errorf("output %q does not contain %q", plain, want)
				}
			}
		})
	}
}

func TestColorizerPreservesContent(t *testing.T) {
	input := "{\n  \"name\": \"Gain\",\n  \"kind\": \"characteristic\"\n}"
	out := stripANSI(newColorizer("monokai").JSON(input))
	if strings.TrimRight(out, "\n") != input {
		t.Errorf("content changed:\n%q\nexpected:\n%q", out, input)
	}
}

func TestColorizerUnknownStyleFallsBack(t *testing.T) {
	out := stripANSI(newColorizer("no-such-style").JSON(`{"a": 1}`))
	if strings.TrimRight(out, "\n") != `{"a": 1}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestColorizerEmptyInput(t *testing.T) {
	if out := newColorizer("monokai").JSON(""); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
