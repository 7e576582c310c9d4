package evaluator

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	telem "github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/otel"
)

// Client is the Evaluator backed by a single provider Backend.
type Client struct {
	backend Backend
	metrics *telem.Metrics
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records analysis outcomes and token usage on m.
func WithMetrics(m *telem.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client around backend.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Provider returns the backend provider name.
func (c *Client) Provider() string {
	return c.backend.Provider()
}

// Model returns the backend model name.
func (c *Client) Model() string {
	return c.backend.Model()
}

// Analyze validates img, makes exactly one provider call and returns the
// validated result. An empty mode is treated as MEDIUM.
func (c *Client) Analyze(ctx context.Context, img model.Image, mode model.EvaluationMode) (*model.AnalysisResult, error) {
	mode = mode.OrDefault()
	start := time.Now()

	result, err := c.analyze(ctx, img, mode)

	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	c.metrics.RecordAnalysis(ctx, string(mode), outcome, time.Since(start))

	log := c.log.WithFields(logrus.Fields{
		"provider":    c.backend.Provider(),
		"model":       c.backend.Model(),
		"mode":        mode,
		"mime_type":   img.MIMEType,
		"image_bytes": len(img.Data),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		log.WithError(err).WithField("kind", KindOf(err)).Warn("analysis failed")
		return nil, err
	}
	log.WithField("score", result.Score).Info("analysis completed")
	return result, nil
}

func (c *Client) analyze(ctx context.Context, img model.Image, mode model.EvaluationMode) (*model.AnalysisResult, error) {
	if err := ValidateImage(img); err != nil {
		return nil, err
	}

	resp, err := c.backend.Generate(ctx, Request{
		Image:       img,
		Instruction: BuildInstruction(mode),
		Temperature: TemperatureFor(mode),
	})
	if err != nil {
		return nil, providerError(c.backend.Provider()+" request failed", err)
	}
	if resp == nil {
		return nil, schemaError("empty response")
	}

	c.metrics.RecordTokens(ctx, c.backend.Provider(), c.backend.Model(), resp.Usage.InputTokens, resp.Usage.OutputTokens)

	result, err := ParseResult(resp.Text)
	if err != nil {
		return nil, err
	}
	result.Usage = resp.Usage
	return result, nil
}

// ValidateImage rejects images that must not be sent to a provider:
// empty data or a media type outside model.SupportedMIMETypes.
func ValidateImage(img model.Image) error {
	if len(img.Data) == 0 {
		return inputError("image is empty")
	}
	if !model.IsSupportedMIMEType(img.MIMEType) {
		return inputError("unsupported image type " + quoteOrEmpty(img.MIMEType) + " (supported: JPEG, PNG, WEBP)")
	}
	return nil
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}
