package model

import (
	"time"
)

// CategoryEvaluation is the sub-score and advice for one rubric dimension.
type CategoryEvaluation struct {
	// Score is an integer in [0, 100].
	Score int `json:"score"`
	// Advice is free-text critique for the category.
	Advice string `json:"advice"`
}

// AnalysisResult is the structured critique returned by the model.
// Every field is required; a response missing any of them is rejected
// before an AnalysisResult is ever constructed.
type AnalysisResult struct {
	// Score is the overall score in [0, 100].
	Score int `json:"score"`
	// Title is a short, creative title for the photo.
	Title string `json:"title"`
	// Summary is the overall impression.
	Summary string `json:"summary"`

	Composition CategoryEvaluation `json:"composition"`
	Lighting    CategoryEvaluation `json:"lighting"`
	Color       CategoryEvaluation `json:"color"`
	Pose        CategoryEvaluation `json:"pose"`
	Costume     CategoryEvaluation `json:"costume"`

	// Strengths is nominally three short items.
	Strengths []string `json:"strengths"`
	// Improvements is nominally three actionable items.
	Improvements []string `json:"improvements"`
	// TechnicalAdvice covers camera settings or post-processing.
	TechnicalAdvice string `json:"technical_advice"`

	// Usage is populated by the evaluator, not parsed from the model response.
	Usage TokenUsage `json:"-"`
}

// TokenUsage tracks token consumption for a single analysis.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Critique is the envelope printed by the analyze command: the parsed
// result plus the metadata of the request that produced it.
type Critique struct {
	// Image is the file name of the submitted photo.
	Image string `json:"image"`
	// Mode is the evaluation mode the request was made with.
	Mode EvaluationMode `json:"mode"`

	Result AnalysisResult `json:"result"`

	// Usage tracks token consumption for this analysis.
	Usage TokenUsage `json:"usage"`

	// Model is the model that produced the critique.
	Model string `json:"model"`
	// Provider is the provider used (e.g., "gemini", "openai").
	Provider string `json:"provider"`
	// EvaluatedAt is the timestamp when the analysis finished.
	EvaluatedAt time.Time `json:"evaluated_at"`
	// DurationMs is the wall-clock time in milliseconds for the round trip.
	DurationMs int64 `json:"duration_ms"`
}
