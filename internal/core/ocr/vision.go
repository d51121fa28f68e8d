package ocr

import (
	"context"
	"image"
	"log"
	"strings"
	"time"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/imaging"
)

// Transcriber is the narrow slice of the AI service the vision provider
// needs; tests substitute deterministic doubles.
type Transcriber interface {
	TranscribeImage(ctx context.Context, imagePNG []byte, instruction string) (string, error)
}

const visionInstruction = `This is an image of a business document (invoice, receipt, bank slip or contract).
Read and return ALL text visible in the image, exactly as written.

RULES:
- Transcribe verbatim, do not invent anything
- Read numbers and dates carefully
- Include every line and field
- Return only the visible text, no commentary`

// VisionProvider implements OCR through a vision-capable AI chat model.
// High accuracy, paid per call — used as fallback when the local engine's
// confidence is too low.
type VisionProvider struct {
	transcriber Transcriber
}

// NewVisionProvider creates a vision-model OCR provider
func NewVisionProvider(transcriber Transcriber) *VisionProvider {
	return &VisionProvider{transcriber: transcriber}
}

// ExtractText sends the image to the vision model. Any failure — including a
// missing API credential — comes back as confidence 0 with the error in
// metadata; this provider never returns an error.
func (p *VisionProvider) ExtractText(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()

	data, err := imaging.EncodePNG(img)
	if err == nil {
		var text string
		text, err = p.transcriber.TranscribeImage(ctx, data, visionInstruction)
		if err == nil {
			text = strings.TrimSpace(text)
			duration := time.Since(start).Milliseconds()

			confidence := 0.95
			if text == "" {
				confidence = 0.0
			}

			log.Printf("👁️ Vision OCR completed: duration=%dms text_length=%d", duration, len(text))

			return &Result{
				Text:         text,
				Confidence:   confidence,
				ProviderName: p.GetProviderName(),
				Metadata: map[string]interface{}{
					"duration_ms": duration,
					"text_length": len(text),
				},
			}, nil
		}
	}

	log.Printf("⚠️ Vision OCR unavailable: %v", err)
	return &Result{
		Text:         "",
		Confidence:   0.0,
		ProviderName: p.GetProviderName(),
		Metadata:     map[string]interface{}{"error": err.Error()},
	}, nil
}

// GetProviderName returns the name of the provider
func (p *VisionProvider) GetProviderName() string {
	return "GPT-4 Vision"
}

// GetPriority returns 2: fallback only (paid API)
func (p *VisionProvider) GetPriority() int {
	return 2
}
