package ocr

import (
	"context"
	"image"
)

// Provider interface for OCR engines
// Implements Strategy pattern: the orchestrator discovers and orders
// registered providers by priority instead of hardcoding engine names.
type Provider interface {
	// ExtractText extracts text from a preprocessed image. Providers report
	// their own failures inside the Result (confidence 0, error in metadata)
	// rather than returning an error; a returned error is treated as an
	// unexpected fault and the orchestrator moves on to the next provider.
	ExtractText(ctx context.Context, img image.Image) (*Result, error)

	// GetProviderName returns the provider name
	GetProviderName() string

	// GetPriority returns the provider priority (lower = tried earlier)
	GetPriority() int
}

// Result contains the extracted text and metadata
type Result struct {
	Text         string                 `json:"text"`
	Confidence   float64                `json:"confidence"` // 0-1
	ProviderName string                 `json:"provider_name"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"` // diagnostics: duration, error, etc.
}
