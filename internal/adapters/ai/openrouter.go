package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

const defaultTimeout = 120 * time.Second

// OpenRouterClient implements Provider over the OpenRouter chat-completions API
type OpenRouterClient struct {
	client    *openai.Client
	enabled   bool
	maxTokens int
	timeout   time.Duration
}

// NewOpenRouterClient creates new OpenRouter client
func NewOpenRouterClient(cfg *config.LLMConfig) *OpenRouterClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &attributionTransport{
			base:    http.DefaultTransport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}

	return &OpenRouterClient{
		client:    openai.NewClientWithConfig(clientCfg),
		enabled:   cfg.HasCredential(),
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
	}
}

func (c *OpenRouterClient) IsEnabled() bool {
	return c.enabled
}

// Complete sends one strict-schema request and returns the first choice
func (c *OpenRouterClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	capture := &envelopeCapture{}
	ctx = context.WithValue(ctx, envelopeKey{}, capture)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   PredictionSchemaName,
				Schema: PredictionSchema,
				Strict: true,
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	completion := &Completion{
		Content:     resp.Choices[0].Message.Content,
		Envelope:    capture.body,
		TotalTokens: totalTokens(capture.body),
	}

	logger.Debug("openrouter response",
		zap.String("model", req.Model),
		zap.Int("content_length", len(completion.Content)),
	)

	return completion, nil
}

// totalTokens reads usage.total_tokens, keeping "absent" distinct from zero
func totalTokens(envelope []byte) *int64 {
	var body struct {
		Usage *struct {
			TotalTokens *int64 `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(envelope, &body); err != nil || body.Usage == nil {
		return nil
	}
	return body.Usage.TotalTokens
}

type envelopeKey struct{}

type envelopeCapture struct {
	body []byte
}

// attributionTransport adds the OpenRouter app attribution headers and keeps
// a copy of the response body for the caller's envelopeCapture.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	capture, ok := req.Context().Value(envelopeKey{}).(*envelopeCapture)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	capture.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, nil
}
