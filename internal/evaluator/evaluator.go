// Package evaluator turns a photo into a structured critique.
//
// The judgment is made entirely by a hosted multimodal model. Go code
// builds the instruction, validates the input, makes exactly one
// schema-constrained request and validates the response. It never scores
// the photo itself.
package evaluator

import (
	"context"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// Evaluator analyzes a photo and returns the critique.
type Evaluator interface {
	// Analyze sends the image to the model and returns the validated result.
	// Failures are *Error values classified by Kind.
	Analyze(ctx context.Context, img model.Image, mode model.EvaluationMode) (*model.AnalysisResult, error)

	// Provider returns the provider name (e.g., "gemini", "openai").
	Provider() string

	// Model returns the model name used for analysis.
	Model() string
}

// Request is a single round trip to a provider.
type Request struct {
	Image       model.Image
	Instruction string
	// Temperature is a sampling hint; it affects style, not validity.
	Temperature float64
}

// Response is the raw provider output.
type Response struct {
	Text  string
	Usage model.TokenUsage
}

// Backend performs one provider call. Implementations must ask the
// provider to honor the schema returned by JSONSchema.
type Backend interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Provider() string
	Model() string
}
