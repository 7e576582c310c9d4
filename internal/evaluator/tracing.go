package evaluator

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

var evalTracer = otel.Tracer("photo-mentor/evaluator")

// startGenerationSpan starts a GenAI client span following the OTel GenAI
// semantic conventions. Span name: "{operation} {model}". The image itself
// is never recorded, only its media type and size.
func startGenerationSpan(ctx context.Context, provider, modelName string, req Request) (context.Context, trace.Span) {
	ctx, span := evalTracer.Start(ctx, "generate_content "+modelName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "generate_content"),
			attribute.String("gen_ai.provider.name", provider),
			attribute.String("gen_ai.request.model", modelName),
			attribute.Float64("gen_ai.request.temperature", req.Temperature),
			attribute.String("gen_ai.output.type", "json"),
			attribute.String("image.mime_type", req.Image.MIMEType),
			attribute.Int("image.bytes", len(req.Image.Data)),

			// Langfuse-specific: ensure this shows as a "generation"
			attribute.String("langfuse.observation.type", "generation"),
		),
	)

	inputMessages := []map[string]string{
		{"role": "user", "content": req.Instruction},
	}
	if inputJSON, err := json.Marshal(inputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(inputJSON)))
	}
	return ctx, span
}

// recordSpanError marks span as failed with the given error type.
func recordSpanError(span trace.Span, errorType string, err error) {
	span.SetAttributes(attribute.String("error.type", errorType))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// recordSpanResponse records usage, finish reason and raw output on span.
func recordSpanResponse(span trace.Span, responseModel, finishReason, rawText string, usage model.TokenUsage) {
	span.SetAttributes(
		attribute.String("gen_ai.response.model", responseModel),
		attribute.Int64("gen_ai.usage.input_tokens", usage.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", usage.OutputTokens),
	)
	if finishReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{finishReason}))
	}

	outputMessages := []map[string]string{
		{"role": "assistant", "content": rawText},
	}
	if outputJSON, err := json.Marshal(outputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(outputJSON)))
	}
}
