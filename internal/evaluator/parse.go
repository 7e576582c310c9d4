package evaluator

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

const (
	minScore = 0
	maxScore = 100
)

// ParseResult validates the provider's response text against the declared
// schema and decodes it. Any missing field, wrong type, non-integer score
// or score outside [0, 100] is a KindSchema error; nothing is defaulted.
func ParseResult(text string) (*model.AnalysisResult, error) {
	text = stripMarkdownFences(text)
	if text == "" {
		return nil, schemaError("empty response")
	}
	if !gjson.Valid(text) {
		return nil, schemaError("response is not valid JSON")
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, schemaError("response is not a JSON object")
	}

	if err := checkUniqueKeys("", doc); err != nil {
		return nil, err
	}
	for _, f := range resultFields {
		if err := checkField(doc, f); err != nil {
			return nil, err
		}
	}
	return decodeResult(doc), nil
}

// decodeResult builds the result from the values checkField validated.
func decodeResult(doc gjson.Result) *model.AnalysisResult {
	category := func(name string) model.CategoryEvaluation {
		v := doc.Get(name)
		return model.CategoryEvaluation{
			Score:  int(v.Get("score").Int()),
			Advice: v.Get("advice").String(),
		}
	}
	list := func(name string) []string {
		items := doc.Get(name).Array()
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.String()
		}
		return out
	}
	return &model.AnalysisResult{
		Score:           int(doc.Get("score").Int()),
		Title:           doc.Get("title").String(),
		Summary:         doc.Get("summary").String(),
		Composition:     category("composition"),
		Lighting:        category("lighting"),
		Color:           category("color"),
		Pose:            category("pose"),
		Costume:         category("costume"),
		Strengths:       list("strengths"),
		Improvements:    list("improvements"),
		TechnicalAdvice: doc.Get("technical_advice").String(),
	}
}

// checkUniqueKeys rejects an object that repeats a key. Decoders disagree
// on which copy wins, so the document is ambiguous.
func checkUniqueKeys(prefix string, obj gjson.Result) error {
	seen := make(map[string]bool)
	var dup string
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if seen[k] {
			dup = k
			return false
		}
		seen[k] = true
		return true
	})
	if dup != "" {
		return schemaError("duplicate field %q", prefix+dup)
	}
	return nil
}

func checkField(doc gjson.Result, f field) error {
	v := doc.Get(f.Name)
	if !v.Exists() {
		return schemaError("missing required field %q", f.Name)
	}

	switch f.Type {
	case fieldInteger:
		return checkScore(f.Name, v)
	case fieldString:
		if v.Type != gjson.String {
			return schemaError("field %q must be a string", f.Name)
		}
	case fieldStringArray:
		if !v.IsArray() {
			return schemaError("field %q must be an array of strings", f.Name)
		}
		for i, item := range v.Array() {
			if item.Type != gjson.String {
				return schemaError("field %q item %d must be a string", f.Name, i)
			}
		}
	case fieldCategory:
		if !v.IsObject() {
			return schemaError("field %q must be an object", f.Name)
		}
		if err := checkUniqueKeys(f.Name+".", v); err != nil {
			return err
		}
		score := v.Get("score")
		if !score.Exists() {
			return schemaError("missing required field %q", f.Name+".score")
		}
		if err := checkScore(f.Name+".score", score); err != nil {
			return err
		}
		advice := v.Get("advice")
		if !advice.Exists() {
			return schemaError("missing required field %q", f.Name+".advice")
		}
		if advice.Type != gjson.String {
			return schemaError("field %q must be a string", f.Name+".advice")
		}
	}
	return nil
}

func checkScore(name string, v gjson.Result) error {
	if v.Type != gjson.Number {
		return schemaError("field %q must be an integer", name)
	}
	n := v.Float()
	if n != math.Trunc(n) {
		return schemaError("field %q must be an integer, got %s", name, v.Raw)
	}
	if n < minScore || n > maxScore {
		return schemaError("field %q must be within [%d, %d], got %s", name, minScore, maxScore, v.Raw)
	}
	return nil
}

// stripMarkdownFences removes markdown code fences that some models wrap
// around JSON despite being asked for data.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
