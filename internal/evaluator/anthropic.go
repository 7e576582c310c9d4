package evaluator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// AnthropicBackend sends photos to the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig holds configuration for the Anthropic backend.
type AnthropicConfig struct {
	// BaseURL is the API endpoint (e.g., "https://resource.services.ai.azure.com/anthropic/").
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "claude-sonnet-4-5").
	Model string
	// MaxTokens is the maximum number of output tokens.
	MaxTokens int64
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// NewAnthropicBackend creates a new Anthropic backend.
func NewAnthropicBackend(cfg AnthropicConfig) *AnthropicBackend {
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

	return &AnthropicBackend{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Provider returns "anthropic".
func (b *AnthropicBackend) Provider() string {
	return "anthropic"
}

// Model returns the model name.
func (b *AnthropicBackend) Model() string {
	return b.model
}

// Generate sends the image as a base64 block. The Messages API has no
// response schema parameter, so the schema is declared in the system prompt.
func (b *AnthropicBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := startGenerationSpan(ctx, b.Provider(), b.model, req)
	defer span.End()

	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   b.maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: schemaSystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(req.Image.MIMEType, base64.StdEncoding.EncodeToString(req.Image.Data)),
				anthropic.NewTextBlock(req.Instruction),
			),
		},
	})
	if err != nil {
		recordSpanError(span, "api_error", err)
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	if len(resp.Content) == 0 {
		recordSpanError(span, "empty_response", nil)
		return &Response{}, nil
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	rawText := text.String()

	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	recordSpanResponse(span, string(resp.Model), string(resp.StopReason), rawText, usage)

	return &Response{Text: rawText, Usage: usage}, nil
}

// schemaSystemPrompt asks for a bare JSON document matching JSONSchema.
func schemaSystemPrompt() string {
	schema, _ := json.MarshalIndent(JSONSchema(), "", "  ")
	var b strings.Builder
	b.WriteString("Respond with ONLY a single JSON object that conforms to this JSON Schema. ")
	b.WriteString("Every property is required. Scores are integers from 0 to 100. ")
	b.WriteString("No markdown code fences, no text outside the JSON object.\n\n")
	b.Write(schema)
	return b.String()
}
