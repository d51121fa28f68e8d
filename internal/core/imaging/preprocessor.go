package imaging

import (
	"image"
	"image/draw"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Preprocessor turns a raw bitmap into a binary image optimized for OCR.
// The pipeline is grayscale → denoise → deskew → contrast → binarization.
type Preprocessor struct {
	skew SkewEstimator
}

// NewPreprocessor creates a preprocessor with the given skew estimator.
// Pass nil to keep deskew disabled (estimator always reports 0°).
func NewPreprocessor(skew SkewEstimator) *Preprocessor {
	if skew == nil {
		skew = FixedSkewEstimator(0)
	}
	return &Preprocessor{skew: skew}
}

// Preprocess runs the full enhancement pipeline and returns a binary
// (0/255) grayscale image ready for OCR.
func (p *Preprocessor) Preprocess(original image.Image) *image.Gray {
	// 1. Convert to grayscale
	processed := Grayscale(original)

	// 2. Noise reduction (Gaussian blur)
	processed = GaussianBlur(processed)

	// 3. Detect and correct skew
	angle := p.skew.EstimateAngle(processed)
	if math.Abs(angle) > 0.5 {
		processed = Rotate(processed, angle)
		log.Printf("🔄 Deskewed image by %.2f°", angle)
	}

	// 4. Enhance contrast
	processed = EnhanceContrast(processed)

	// 5. Binarization with Otsu's threshold
	return Binarize(processed, OtsuThreshold(processed))
}

// Grayscale reduces an image to single-channel luminance.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// GaussianBlur applies a 3x3 Gaussian-like kernel [1 2 1; 2 4 2; 1 2 1]/16.
// Edge pixels are copied through untouched (no extension or wrap).
func GaussianBlur(img *image.Gray) *image.Gray {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, img.Pix)

	if w < 3 || h < 3 {
		return out
	}

	kernel := [3][3]int{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += kernel[ky+1][kx+1] * int(img.GrayAt(x+kx, y+ky).Y)
				}
			}
			out.Pix[y*out.Stride+x] = uint8(sum / 16)
		}
	}
	return out
}

// Rotate rotates the image about its center by angle degrees, expanding the
// canvas to the rotated bounding box so no content is clipped. New corner
// areas come out black; callers binarize afterwards anyway.
func Rotate(img *image.Gray, angleDeg float64) *image.Gray {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))

	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())
	newW := int(math.Floor(w*cos + h*sin))
	newH := int(math.Floor(h*cos + w*sin))

	rotated := image.NewGray(image.Rect(0, 0, newW, newH))

	s, c := math.Sin(rad), math.Cos(rad)
	// translate(center') · rotate(rad) · translate(-center)
	m := f64.Aff3{
		c, -s, -c*w/2 + s*h/2 + float64(newW)/2,
		s, c, -s*w/2 - c*h/2 + float64(newH)/2,
	}
	xdraw.BiLinear.Transform(rotated, m, img, img.Bounds(), xdraw.Src, nil)
	return rotated
}

// EnhanceContrast applies a linear rescale: pixel' = clamp(pixel*1.2 + 10).
func EnhanceContrast(img *image.Gray) *image.Gray {
	out := image.NewGray(img.Rect)
	for i, v := range img.Pix {
		scaled := float64(v)*1.2 + 10
		if scaled > 255 {
			scaled = 255
		}
		out.Pix[i] = uint8(scaled)
	}
	return out
}

// OtsuThreshold picks the global binarization threshold maximizing the
// between-class variance wB·wF·(mB−mF)² over the 256-bin histogram.
func OtsuThreshold(img *image.Gray) int {
	var histogram [256]int
	total := img.Rect.Dx() * img.Rect.Dy()
	for _, v := range img.Pix {
		histogram[v]++
	}
	return otsuFromHistogram(histogram[:], total)
}

func otsuFromHistogram(histogram []int, total int) int {
	var sum float64
	for i, count := range histogram {
		sum += float64(i) * float64(count)
	}

	var sumB float64
	wB, threshold := 0, 0
	maxVar := 0.0

	for i := 0; i < 256; i++ {
		wB += histogram[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(i) * float64(histogram[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		varBetween := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)

		if varBetween > maxVar {
			maxVar = varBetween
			threshold = i
		}
	}

	return threshold
}

// Binarize produces a black-and-white image: pixels below the threshold
// become black, the rest white.
func Binarize(img *image.Gray, threshold int) *image.Gray {
	out := image.NewGray(img.Rect)
	for i, v := range img.Pix {
		if int(v) < threshold {
			out.Pix[i] = 0
		} else {
			out.Pix[i] = 255
		}
	}
	return out
}
