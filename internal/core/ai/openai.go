package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when no OpenAI credential is configured. Callers
// treat it as a degraded outcome, not a fatal error.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY is not configured")

type OpenAIProvider struct {
	client      *openai.Client
	apiKey      string
	visionModel string
	textModel   string
	maxTokens   int
}

// NewOpenAIProvider creates an OpenAI-backed AI provider. An empty apiKey is
// allowed; calls will fail with ErrNoAPIKey so the pipeline can degrade.
func NewOpenAIProvider(apiKey, visionModel, textModel string) *OpenAIProvider {
	if visionModel == "" {
		visionModel = "gpt-4o"
	}
	if textModel == "" {
		textModel = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		apiKey:      apiKey,
		visionModel: visionModel,
		textModel:   textModel,
		maxTokens:   1000,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) TranscribeImage(ctx context.Context, imagePNG []byte, instruction string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imagePNG)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.visionModel,
		MaxTokens: p.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai vision error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
