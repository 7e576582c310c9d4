package evaluator

// fieldType is the declared type of a response field.
type fieldType int

const (
	fieldInteger fieldType = iota
	fieldString
	fieldStringArray
	fieldCategory // {score: integer, advice: string}
)

// field declares one required property of the response document.
type field struct {
	Name        string
	Type        fieldType
	Description string
}

// resultFields declares the response document. Every field is required.
// Backends derive their provider-specific schema from this list and
// ParseResult validates against it.
var resultFields = []field{
	{"score", fieldInteger, "Overall score out of 100 based on artistic merit and technique."},
	{"title", fieldString, "A creative and artistic title for the photo in Japanese."},
	{"summary", fieldString, "A brief overall impression of the photo in Japanese."},
	{"composition", fieldCategory, "Critique of the composition in Japanese."},
	{"lighting", fieldCategory, "Critique of the lighting in Japanese."},
	{"color", fieldCategory, "Critique of the color grading in Japanese."},
	{"pose", fieldCategory, "Critique of the pose/placement of subjects in Japanese."},
	{"costume", fieldCategory, "Critique of the costume/outfit or styling in Japanese."},
	{"strengths", fieldStringArray, "List of 3 key strengths of the photo in Japanese."},
	{"improvements", fieldStringArray, "List of 3 actionable improvements for next time in Japanese."},
	{"technical_advice", fieldString, "Specific technical advice regarding camera settings or post-processing in Japanese."},
}

// requiredNames returns the names of all response fields in declaration order.
func requiredNames() []string {
	names := make([]string, len(resultFields))
	for i, f := range resultFields {
		names[i] = f.Name
	}
	return names
}

// JSONSchema returns the response schema as a JSON Schema document.
// Objects are closed (additionalProperties: false) so the document is
// accepted by strict structured-output modes.
func JSONSchema() map[string]any {
	props := make(map[string]any, len(resultFields))
	for _, f := range resultFields {
		props[f.Name] = jsonSchemaFor(f)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             requiredNames(),
		"additionalProperties": false,
	}
}

func jsonSchemaFor(f field) map[string]any {
	switch f.Type {
	case fieldInteger:
		return map[string]any{"type": "integer", "description": f.Description}
	case fieldStringArray:
		return map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": f.Description,
		}
	case fieldCategory:
		return map[string]any{
			"type":        "object",
			"description": f.Description,
			"properties": map[string]any{
				"score":  map[string]any{"type": "integer", "description": "Score out of 100."},
				"advice": map[string]any{"type": "string"},
			},
			"required":             []string{"score", "advice"},
			"additionalProperties": false,
		}
	default:
		return map[string]any{"type": "string", "description": f.Description}
	}
}
