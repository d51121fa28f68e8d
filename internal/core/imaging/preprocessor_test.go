package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func TestOtsuFromHistogramBimodal(t *testing.T) {
	histogram := make([]int, 256)
	histogram[50] = 100
	histogram[200] = 100

	threshold := otsuFromHistogram(histogram, 200)

	// Between-class variance is flat between the two modes; the first
	// maximum wins.
	assert.Equal(t, 50, threshold)
}

func TestOtsuFromHistogramUniformImage(t *testing.T) {
	histogram := make([]int, 256)
	histogram[128] = 1000

	assert.Equal(t, 0, otsuFromHistogram(histogram, 1000))
}

func TestOtsuThresholdSeparatesInkFromPaper(t *testing.T) {
	img := uniformGray(20, 20, 220)
	for x := 0; x < 20; x++ {
		img.SetGray(x, 10, color.Gray{Y: 10})
	}

	threshold := OtsuThreshold(img)
	assert.Greater(t, threshold, 0)
	assert.LessOrEqual(t, threshold, 220)
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{10, 128, 240}

	out := Binarize(img, 128)

	assert.Equal(t, []uint8{0, 255, 255}, out.Pix)
}

func TestGaussianBlurLeavesEdgesUntouched(t *testing.T) {
	img := uniformGray(5, 5, 100)
	img.SetGray(0, 0, color.Gray{Y: 7})
	img.SetGray(4, 4, color.Gray{Y: 7})

	out := GaussianBlur(img)

	assert.Equal(t, uint8(7), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(7), out.GrayAt(4, 4).Y)
}

func TestGaussianBlurUniformInterior(t *testing.T) {
	img := uniformGray(5, 5, 100)

	out := GaussianBlur(img)

	// A flat region stays flat under a normalized kernel.
	assert.Equal(t, uint8(100), out.GrayAt(2, 2).Y)
}

func TestGaussianBlurTinyImagePassthrough(t *testing.T) {
	img := uniformGray(2, 2, 42)

	out := GaussianBlur(img)

	assert.Equal(t, img.Pix, out.Pix)
}

func TestEnhanceContrast(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{0, 100, 250}

	out := EnhanceContrast(img)

	assert.Equal(t, uint8(10), out.Pix[0])  // 0*1.2+10
	assert.Equal(t, uint8(130), out.Pix[1]) // 100*1.2+10
	assert.Equal(t, uint8(255), out.Pix[2]) // clamped
}

func TestRotateExpandsCanvas(t *testing.T) {
	img := uniformGray(100, 50, 200)

	out := Rotate(img, 90)

	assert.Equal(t, 50, out.Rect.Dx())
	assert.Equal(t, 100, out.Rect.Dy())
}

func TestRotateSmallAngleGrowsBothDimensions(t *testing.T) {
	img := uniformGray(100, 50, 200)

	out := Rotate(img, 5)

	assert.GreaterOrEqual(t, out.Rect.Dx(), 100)
	assert.GreaterOrEqual(t, out.Rect.Dy(), 50)
}

func TestPreprocessProducesBinaryOutput(t *testing.T) {
	img := uniformGray(40, 40, 220)
	for y := 10; y < 30; y += 5 {
		for x := 5; x < 35; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	p := NewPreprocessor(nil)
	out := p.Preprocess(img)

	require.NotNil(t, out)
	for _, v := range out.Pix {
		assert.Contains(t, []uint8{0, 255}, v)
	}
}

func TestPreprocessDeterministic(t *testing.T) {
	img := uniformGray(40, 40, 220)
	for x := 0; x < 40; x++ {
		img.SetGray(x, 20, color.Gray{Y: 30})
	}

	p := NewPreprocessor(nil)
	first := p.Preprocess(img)
	second := p.Preprocess(img)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestFixedSkewEstimator(t *testing.T) {
	assert.Equal(t, 0.0, FixedSkewEstimator(0).EstimateAngle(nil))
	assert.Equal(t, 2.5, FixedSkewEstimator(2.5).EstimateAngle(nil))
}

func TestProjectionSkewEstimatorStraightPage(t *testing.T) {
	img := uniformGray(200, 200, 230)
	for y := 20; y < 180; y += 10 {
		for x := 10; x < 190; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	angle := NewProjectionSkewEstimator().EstimateAngle(img)

	// Horizontal text lines already maximize projection variance at 0°.
	assert.InDelta(t, 0.0, angle, 0.001)
}

func TestProjectionSkewEstimatorEmptyImage(t *testing.T) {
	angle := NewProjectionSkewEstimator().EstimateAngle(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, 0.0, angle)
}
