package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	response string
	err      error
	calls    int
}

func (f *fakeTranscriber) TranscribeImage(ctx context.Context, imagePNG []byte, instruction string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestVisionExtractTextNonEmpty(t *testing.T) {
	transcriber := &fakeTranscriber{response: "  FATURA No: 123\nToplam: 500 TL  "}
	p := NewVisionProvider(transcriber)

	result, err := p.ExtractText(context.Background(), testImage())

	require.NoError(t, err)
	assert.Equal(t, "FATURA No: 123\nToplam: 500 TL", result.Text, "response is trimmed")
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "GPT-4 Vision", result.ProviderName)
	assert.Equal(t, 1, transcriber.calls)
}

func TestVisionExtractTextEmptyResponseScoresZero(t *testing.T) {
	transcriber := &fakeTranscriber{response: "   \n  "}
	p := NewVisionProvider(transcriber)

	result, err := p.ExtractText(context.Background(), testImage())

	// An empty transcription carries no evidence of success, so it must not
	// clear the orchestrator's threshold.
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestVisionExtractTextTranscriberFailure(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("api unavailable")}
	p := NewVisionProvider(transcriber)

	result, err := p.ExtractText(context.Background(), testImage())

	// Failures degrade to an empty result; the orchestrator moves on.
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Contains(t, result.Metadata, "error")
	assert.Equal(t, "api unavailable", result.Metadata["error"])
}

func TestVisionProviderIsFallback(t *testing.T) {
	p := NewVisionProvider(&fakeTranscriber{})
	assert.Equal(t, 2, p.GetPriority())
	assert.Equal(t, "GPT-4 Vision", p.GetProviderName())
}
