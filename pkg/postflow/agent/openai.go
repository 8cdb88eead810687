package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Default OpenAI models.
const (
	DefaultTextModel  = openai.GPT4o
	DefaultImageModel = openai.CreateImageModelDallE3
)

// OpenAI implements TextCapability and ImageCapability using the OpenAI
// API.
type OpenAI struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// Compile-time interface checks.
var (
	_ TextCapability  = (*OpenAI)(nil)
	_ ImageCapability = (*OpenAI)(nil)
)

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL    string
	textModel  string
	imageModel string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithTextModel overrides the chat model used for research, content,
// and image prompt generation.
func WithTextModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.textModel = model }
}

// WithImageModel overrides the image generation model.
func WithImageModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.imageModel = model }
}

// NewOpenAI creates an OpenAI-backed capability client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	cfg := openAIConfig{
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		textModel:  cfg.textModel,
		imageModel: cfg.imageModel,
	}, nil
}

// GenerateText implements TextCapability via chat completions.
func (o *OpenAI) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: o.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage implements ImageCapability. The response is requested
// as base64 and decoded to raw PNG bytes.
func (o *OpenAI) GenerateImage(ctx context.Context, req ImageGenRequest) ([]byte, error) {
	prompt := req.Prompt
	if req.Style != "" {
		prompt = fmt.Sprintf("%s Style: %s.", prompt, req.Style)
	}

	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Model:          o.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           req.Size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("image generation returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}
