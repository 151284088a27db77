// Package llm talks to an OpenAI-compatible chat endpoint (Ollama's /v1 by
// default) for stats commentary and ticket screenshot reading.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bettracker/internal/config"
)

var ErrEmptyResponse = errors.New("llm: empty response")

type Client struct {
	api         openai.Client
	textModel   string
	visionModel string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
	logger      *zap.Logger
}

func New(cfg config.LLMConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = "ollama"
	}
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Client{
		api:         openai.NewClient(opts...),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

func (c *Client) TextModel() string {
	if c == nil {
		return ""
	}
	return c.textModel
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(c.maxTokens)
	}

	started := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "chat completion model=%s", model)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.Wrapf(ErrEmptyResponse, "model=%s", model)
	}
	text := resp.Choices[0].Message.Content
	c.logger.Info("llm completion",
		zap.String("model", model),
		zap.Int("chars", len(text)),
		zap.Duration("took", time.Since(started)),
	)
	return text, nil
}

// Analyze asks the text model to comment on aggregated stats. The aggregates
// are sent as indented JSON and the optional question is appended.
func (c *Client) Analyze(ctx context.Context, aggregates any, question string) (string, error) {
	if c == nil {
		return "", errors.New("llm client unavailable")
	}
	raw, err := json.MarshalIndent(aggregates, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode aggregates")
	}
	text, err := c.complete(ctx, c.textModel, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(analysisSystemPrompt),
		openai.UserMessage(analysisUserPrompt(string(raw), question)),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ReadTicketImage sends a base64 screenshot to the vision model. Failures are
// folded into a zero-confidence result; it never returns an error.
func (c *Client) ReadTicketImage(ctx context.Context, imageBase64 string, bookmaker string) OCRResult {
	if c == nil {
		return OCRResult{Tickets: []TicketCandidate{}, RawText: "llm client unavailable"}
	}
	c.logger.Info("ocr request", zap.String("model", c.visionModel), zap.Int("base64_chars", len(imageBase64)))

	dataURL := "data:" + sniffImageMIME(imageBase64) + ";base64," + imageBase64
	raw, err := c.complete(ctx, c.visionModel, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(ocrPrompt(bookmaker)),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}),
	})
	if err != nil {
		c.logger.Warn("ocr model call failed", zap.Error(err))
		return OCRResult{Tickets: []TicketCandidate{}, RawText: "model call failed: " + err.Error()}
	}
	if len(raw) < 50 {
		c.logger.Warn("ocr response suspiciously short", zap.String("raw", raw))
	}

	result := ParseOCRResponse(raw)
	c.logger.Info("ocr parsed", zap.Int("tickets", len(result.Tickets)), zap.Float64("confidence", result.Confidence))
	return result
}

// sniffImageMIME guesses the image type from the first base64 characters.
func sniffImageMIME(b64 string) string {
	switch {
	case strings.HasPrefix(b64, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(b64, "R0lGOD"):
		return "image/gif"
	case strings.HasPrefix(b64, "UklGR"):
		return "image/webp"
	default:
		return "image/png"
	}
}
