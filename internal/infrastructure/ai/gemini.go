// Package ai adapts Google's Gemini models for receipt extraction.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// GeminiModel sends an image plus an instruction to a Gemini model and
// returns the reply text.
type GeminiModel struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// GeminiOption configures a GeminiModel
type GeminiOption func(*geminiOptions)

type geminiOptions struct {
	baseURL string
	logger  *zap.Logger
	timeout time.Duration
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) GeminiOption {
	return func(o *geminiOptions) {
		o.baseURL = url
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) GeminiOption {
	return func(o *geminiOptions) {
		o.logger = logger
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) GeminiOption {
	return func(o *geminiOptions) {
		o.timeout = d
	}
}

// NewGeminiModel creates a Gemini-backed model client.
func NewGeminiModel(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	o := &geminiOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{
		client:  client,
		model:   model,
		timeout: o.timeout,
		logger:  o.logger,
	}, nil
}

// Generate sends the image inline followed by the prompt and returns the
// concatenated text of the first candidate.
func (m *GeminiModel) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	m.logger.Debug("Gemini response received",
		zap.String("model", m.model),
		zap.Int("image_size", len(image)),
		zap.Int("response_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	if text == "" {
		return "", errors.New("no text returned by model")
	}
	return text, nil
}

// Name returns the model identifier.
func (m *GeminiModel) Name() string {
	return "genai:" + m.model
}
