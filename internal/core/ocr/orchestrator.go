package ocr

import (
	"context"
	"errors"
	"image"
	"log"
	"sort"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/imaging"
)

// MinConfidenceThreshold is the quality gate: the first provider whose
// result reaches it short-circuits the fallback chain.
const MinConfidenceThreshold = 0.70

// ErrAllProvidersFailed is returned when every registered provider produced
// empty text.
var ErrAllProvidersFailed = errors.New("all OCR providers failed to extract text")

// Orchestrator runs the OCR pipeline: preprocess once, then try providers in
// priority order until one clears the confidence threshold.
type Orchestrator struct {
	preprocessor *imaging.Preprocessor
	providers    []Provider
}

// NewOrchestrator creates an orchestrator over the registered providers.
func NewOrchestrator(preprocessor *imaging.Preprocessor, providers ...Provider) *Orchestrator {
	return &Orchestrator{preprocessor: preprocessor, providers: providers}
}

// Process preprocesses the image and walks the provider chain.
// A provider fault (error or panic-free failure) is logged and skipped.
// If no provider reaches the threshold, the last non-empty result wins as a
// best-effort degrade; only all-empty output is an error.
func (o *Orchestrator) Process(ctx context.Context, img image.Image) (*Result, error) {
	if len(o.providers) == 0 {
		return nil, errors.New("no OCR providers configured")
	}

	processed := o.preprocessor.Preprocess(img)

	sorted := make([]Provider, len(o.providers))
	copy(sorted, o.providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GetPriority() < sorted[j].GetPriority()
	})

	var lastResult *Result
	for _, provider := range sorted {
		log.Printf("🔍 Trying OCR provider: %s (priority=%d)", provider.GetProviderName(), provider.GetPriority())

		result, err := provider.ExtractText(ctx, processed)
		if err != nil {
			log.Printf("❌ Provider %s failed: %v", provider.GetProviderName(), err)
			continue
		}
		lastResult = result

		if result.Confidence >= MinConfidenceThreshold {
			log.Printf("✅ Sufficient confidence (%.2f) from %s", result.Confidence, result.ProviderName)
			return result, nil
		}

		log.Printf("⚠️ Low confidence (%.2f) from %s, trying next provider...",
			result.Confidence, result.ProviderName)
	}

	if lastResult != nil && lastResult.Text != "" {
		log.Printf("⚠️ No provider reached threshold, returning best-effort result: confidence=%.2f",
			lastResult.Confidence)
		return lastResult, nil
	}

	return nil, ErrAllProvidersFailed
}
