package evaluator

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"score": 80}`,
			want:  `{"score": 80}`,
		},
		{
			name:  "fenced json block",
			input: "```json\n{\"score\": 80}\n```",
			want:  `{"score": 80}`,
		},
		{
			name:  "fenced without language",
			input: "```\n{\"score\": 80}\n```",
			want:  `{"score": 80}`,
		},
		{
			name:  "fenced with whitespace",
			input: "  ```json\n{\"title\": \"t\"}\n```  ",
			want:  `{"title": "t"}`,
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only fences no content",
			input: "```json\n```",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripMarkdownFences(tt.input)
			if got != tt.want {
				t.Errorf("stripMarkdownFences(%q) =\n  %q\nwant:\n  %q", tt.input, got, tt.want)
			}
		})
	}
}

// mutate decodes validResponse, applies fn and re-encodes it.
func mutate(t *testing.T, fn func(doc map[string]any)) string {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(validResponse), &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	fn(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return string(out)
}

func TestParseResult_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "empty", input: "", wantMsg: "empty response"},
		{name: "prose", input: "This photo is lovely!", wantMsg: "not valid JSON"},
		{name: "array root", input: `[1, 2, 3]`, wantMsg: "not a JSON object"},
		{
			name:    "missing technical_advice",
			input:   mutate(t, func(d map[string]any) { delete(d, "technical_advice") }),
			wantMsg: `"technical_advice"`,
		},
		{
			name:    "missing nested advice",
			input:   mutate(t, func(d map[string]any) { delete(d["lighting"].(map[string]any), "advice") }),
			wantMsg: `"lighting.advice"`,
		},
		{
			name:    "string score",
			input:   mutate(t, func(d map[string]any) { d["score"] = "85" }),
			wantMsg: "must be an integer",
		},
		{
			name:    "fractional score",
			input:   mutate(t, func(d map[string]any) { d["pose"].(map[string]any)["score"] = 82.5 }),
			wantMsg: "must be an integer",
		},
		{
			name:    "score above range",
			input:   mutate(t, func(d map[string]any) { d["score"] = 120 }),
			wantMsg: "within [0, 100]",
		},
		{
			name:    "negative category score",
			input:   mutate(t, func(d map[string]any) { d["color"].(map[string]any)["score"] = -1 }),
			wantMsg: "within [0, 100]",
		},
		{
			name:    "null title",
			input:   mutate(t, func(d map[string]any) { d["title"] = nil }),
			wantMsg: `"title" must be a string`,
		},
		{
			name:    "strengths not array",
			input:   mutate(t, func(d map[string]any) { d["strengths"] = "a, b, c" }),
			wantMsg: "array of strings",
		},
		{
			name:    "improvements with number",
			input:   mutate(t, func(d map[string]any) { d["improvements"] = []any{"x", 2} }),
			wantMsg: "item 1",
		},
		{
			name:    "duplicate top-level score",
			input:   strings.Replace(validResponse, `"score": 85,`, `"score": 50, "score": 500,`, 1),
			wantMsg: `duplicate field "score"`,
		},
		{
			name:    "duplicate category score",
			input:   strings.Replace(validResponse, `"composition": {"score": 80,`, `"composition": {"score": 80, "score": -7,`, 1),
			wantMsg: `duplicate field "composition.score"`,
		},
		{
			name:    "category not object",
			input:   mutate(t, func(d map[string]any) { d["costume"] = 84 }),
			wantMsg: `"costume" must be an object`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(tt.input)
			if err == nil {
				t.Fatalf("expected error, got result %+v", result)
			}
			if result != nil {
				t.Error("expected nil result on failure")
			}
			if !IsKind(err, KindSchema) {
				t.Errorf("expected schema error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseResult_AcceptsFencedDocument(t *testing.T) {
	result, err := ParseResult("```json\n" + validResponse + "\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 85 || result.Lighting.Score != 90 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseResult_IgnoresUnknownFields(t *testing.T) {
	input := mutate(t, func(d map[string]any) { d["mood"] = "calm" })
	if _, err := ParseResult(input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSchemaRequiresEveryField(t *testing.T) {
	schema := JSONSchema()
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("required is %T", schema["required"])
	}
	props := schema["properties"].(map[string]any)
	if len(required) != len(props) {
		t.Errorf("required lists %d fields, properties has %d", len(required), len(props))
	}
	for _, name := range required {
		if _, ok := props[name]; !ok {
			t.Errorf("required field %q has no property", name)
		}
	}
	if len(required) != 11 {
		t.Errorf("expected 11 required fields, got %d", len(required))
	}
}

func TestGeminiSchemaMatchesDeclaredFields(t *testing.T) {
	s := geminiSchema()
	if len(s.Required) != len(resultFields) {
		t.Errorf("gemini schema requires %d fields, want %d", len(s.Required), len(resultFields))
	}
	for _, f := range resultFields {
		if _, ok := s.Properties[f.Name]; !ok {
			t.Errorf("gemini schema missing %q", f.Name)
		}
	}
	if got := s.Properties["composition"].Required; len(got) != 2 {
		t.Errorf("category schema should require score and advice, got %v", got)
	}
}

func TestSchemaSystemPromptEmbedsSchema(t *testing.T) {
	p := schemaSystemPrompt()
	if !strings.Contains(p, `"technical_advice"`) {
		t.Error("system prompt does not embed the schema")
	}
}
