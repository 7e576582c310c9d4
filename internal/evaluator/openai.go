package evaluator

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// OpenAIBackend sends photos to an OpenAI-compatible Chat Completions API.
// Works with OpenAI, Azure OpenAI, and any OpenAI-compatible vision endpoint.
type OpenAIBackend struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// OpenAIConfig holds configuration for the OpenAI backend.
type OpenAIConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "gpt-4o-mini").
	Model string
	// MaxTokens is the maximum number of completion tokens.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewOpenAIBackend creates a new OpenAI-compatible backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &OpenAIBackend{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Provider returns "openai".
func (b *OpenAIBackend) Provider() string {
	return "openai"
}

// Model returns the model name.
func (b *OpenAIBackend) Model() string {
	return b.model
}

// Generate sends the image as a data URL with a strict json_schema response format.
func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := startGenerationSpan(ctx, b.Provider(), b.model, req)
	defer span.End()

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(req.Image),
				}),
				openai.TextContentPart(req.Instruction),
			}),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "photo_critique",
					Description: openai.String("Structured critique of a photograph"),
					Schema:      JSONSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(b.maxTokens),
	})
	if err != nil {
		recordSpanError(span, "api_error", err)
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		recordSpanError(span, "empty_response", nil)
		return &Response{}, nil
	}

	rawText := resp.Choices[0].Message.Content
	usage := model.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	span.SetAttributes(attribute.String("gen_ai.response.id", resp.ID))
	recordSpanResponse(span, resp.Model, string(resp.Choices[0].FinishReason), rawText, usage)

	return &Response{Text: rawText, Usage: usage}, nil
}

// dataURL encodes img as a base64 data URL.
func dataURL(img model.Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
