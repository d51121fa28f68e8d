package ocr

import (
	"context"
	"image"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/otiai10/gosseract/v2"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/imaging"
)

var (
	datePattern   = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	amountPattern = regexp.MustCompile(`\d+[.,]\d{2}`)
	numberPattern = regexp.MustCompile(`\d`)
)

// TesseractProvider implements OCR using the local Tesseract engine.
// Fast, free, and works offline — tried before any paid provider.
type TesseractProvider struct {
	languages []string
}

// NewTesseractProvider creates a Tesseract OCR provider.
// languages is a tesseract language spec like "tur+eng".
func NewTesseractProvider(languages string) *TesseractProvider {
	if languages == "" {
		languages = "tur+eng"
	}
	return &TesseractProvider{languages: strings.Split(languages, "+")}
}

// ExtractText runs Tesseract over the image. Engine failures never surface
// as errors; they come back as an empty result with the error in metadata.
func (p *TesseractProvider) ExtractText(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()

	text, err := p.recognize(img)
	if err != nil {
		log.Printf("❌ Tesseract OCR failed: %v", err)
		return &Result{
			Text:         "",
			Confidence:   0.0,
			ProviderName: p.GetProviderName(),
			Metadata:     map[string]interface{}{"error": err.Error()},
		}, nil
	}

	confidence := ScoreText(text)
	duration := time.Since(start).Milliseconds()

	log.Printf("🔍 Tesseract OCR completed: duration=%dms confidence=%.2f text_length=%d",
		duration, confidence, len(text))

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

func (p *TesseractProvider) recognize(img image.Image) (string, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.languages...); err != nil {
		return "", err
	}
	// Automatic page segmentation with orientation detection, LSTM engine.
	if err := client.SetPageSegMode(gosseract.PSM_AUTO_OSD); err != nil {
		return "", err
	}
	if err := client.SetVariable("tessedit_ocr_engine_mode", "1"); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ScoreText estimates OCR quality from the output text itself; the engine's
// own score is deliberately not used. Documents are expected to carry words,
// digits, dates and amounts — each present signal raises the score, while a
// high ratio of garbage characters cuts it down.
func ScoreText(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0.0
	}

	score := 0.0

	words := strings.Fields(text)
	if len(words) >= 10 {
		score += 0.3
	} else if len(words) >= 5 {
		score += 0.15
	}

	if numberPattern.MatchString(text) {
		score += 0.2
	}
	if datePattern.MatchString(text) {
		score += 0.25
	}
	if amountPattern.MatchString(text) {
		score += 0.25
	}

	// Too many special characters usually means the engine misread the page.
	special, total := 0, 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total > 0 && float64(special)/float64(total) > 0.3 {
		score *= 0.7
	}

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

// GetProviderName returns the name of the provider
func (p *TesseractProvider) GetProviderName() string {
	return "Tesseract"
}

// GetPriority returns 1: try first (free and fast)
func (p *TesseractProvider) GetPriority() int {
	return 1
}
