package evaluator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// GeminiBackend sends photos to Gemini through the Google GenAI SDK.
// Works with both the Gemini API and Vertex AI.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// GeminiConfig holds configuration for the Gemini backend.
type GeminiConfig struct {
	// APIKey is the Gemini API key. Ignored when Project is set.
	APIKey string
	// Project and Location select the Vertex AI backend.
	Project  string
	Location string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Model is the model name (e.g., "gemini-2.5-flash").
	Model string
	// MaxTokens is the maximum number of output tokens.
	MaxTokens int64
}

// NewGeminiBackend creates a Gemini backend. The client is constructed
// here, once, with explicit credentials.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" {
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &GeminiBackend{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(maxTokens),
	}, nil
}

// Provider returns "gemini".
func (b *GeminiBackend) Provider() string {
	return "gemini"
}

// Model returns the model name.
func (b *GeminiBackend) Model() string {
	return b.model
}

// Generate sends the image and instruction with the response schema attached.
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := startGenerationSpan(ctx, b.Provider(), b.model, req)
	defer span.End()

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data}},
		genai.NewPartFromText(req.Instruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temperature := float32(req.Temperature)
	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(),
		Temperature:      &temperature,
		MaxOutputTokens:  b.maxTokens,
	})
	if err != nil {
		recordSpanError(span, "api_error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	rawText := resp.Text()
	if strings.TrimSpace(rawText) == "" {
		recordSpanError(span, "empty_response", nil)
	}

	var usage model.TokenUsage
	if resp.UsageMetadata != nil {
		usage.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	var finishReason string
	if len(resp.Candidates) > 0 {
		finishReason = string(resp.Candidates[0].FinishReason)
	}
	recordSpanResponse(span, b.model, finishReason, rawText, usage)

	return &Response{Text: rawText, Usage: usage}, nil
}

// geminiSchema converts the declared response fields into a genai.Schema.
func geminiSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(resultFields))
	for _, f := range resultFields {
		props[f.Name] = geminiFieldSchema(f)
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         requiredNames(),
		PropertyOrdering: requiredNames(),
	}
}

func geminiFieldSchema(f field) *genai.Schema {
	switch f.Type {
	case fieldInteger:
		return &genai.Schema{Type: genai.TypeInteger, Description: f.Description}
	case fieldStringArray:
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: f.Description,
		}
	case fieldCategory:
		return &genai.Schema{
			Type:        genai.TypeObject,
			Description: f.Description,
			Properties: map[string]*genai.Schema{
				"score":  {Type: genai.TypeInteger, Description: "Score out of 100."},
				"advice": {Type: genai.TypeString, Description: f.Description},
			},
			Required: []string{"score", "advice"},
		}
	default:
		return &genai.Schema{Type: genai.TypeString, Description: f.Description}
	}
}
