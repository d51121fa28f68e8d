package ai

import "context"

// Provider interface for AI text/vision completion services.
// Both the classification fallback and the field extractor depend on
// Complete; the vision OCR provider depends on TranscribeImage.
type Provider interface {
	// Complete sends a text prompt and returns the raw model response.
	// Temperature 0 gives deterministic output for extraction.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)

	// TranscribeImage sends a PNG image with a text instruction to a
	// vision-capable model and returns the raw response.
	TranscribeImage(ctx context.Context, imagePNG []byte, instruction string) (string, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// Service wraps an AI provider for dependency injection
type Service struct {
	provider Provider
}

// NewService creates an AI service with the given provider
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

func (s *Service) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	return s.provider.Complete(ctx, systemPrompt, userPrompt, temperature)
}

func (s *Service) TranscribeImage(ctx context.Context, imagePNG []byte, instruction string) (string, error) {
	return s.provider.TranscribeImage(ctx, imagePNG, instruction)
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
