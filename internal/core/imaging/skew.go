package imaging

import (
	"image"
	"math"
)

// SkewEstimator estimates the rotation angle (degrees, clockwise positive)
// of scanned text in a grayscale image. The preprocessor only rotates when
// the reported angle exceeds 0.5°.
type SkewEstimator interface {
	EstimateAngle(img *image.Gray) float64
}

// FixedSkewEstimator always reports the same angle. FixedSkewEstimator(0) is
// the default: deskew disabled, matching scanners that emit straight pages.
type FixedSkewEstimator float64

func (f FixedSkewEstimator) EstimateAngle(*image.Gray) float64 { return float64(f) }

// ProjectionSkewEstimator finds the skew angle by maximizing the variance of
// the horizontal projection profile: text lines produce sharply alternating
// dense/empty rows when the page is straight, so the candidate angle with the
// highest row-count variance is the best deskew estimate.
type ProjectionSkewEstimator struct {
	// MaxAngle bounds the search to [-MaxAngle, +MaxAngle] degrees.
	MaxAngle float64
	// Step is the search granularity in degrees.
	Step float64
}

// NewProjectionSkewEstimator returns an estimator searching ±5° in 0.5° steps.
func NewProjectionSkewEstimator() *ProjectionSkewEstimator {
	return &ProjectionSkewEstimator{MaxAngle: 5, Step: 0.5}
}

func (e *ProjectionSkewEstimator) EstimateAngle(img *image.Gray) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	// Sample at most ~200k pixels to keep the search cheap on large scans.
	stride := 1
	if w*h > 200000 {
		stride = int(math.Sqrt(float64(w*h) / 200000))
	}

	bestAngle, bestScore := 0.0, e.score(img, 0, stride)
	for angle := -e.MaxAngle; angle <= e.MaxAngle+1e-9; angle += e.Step {
		if angle == 0 {
			continue
		}
		if s := e.score(img, angle, stride); s > bestScore {
			bestScore = s
			bestAngle = angle
		}
	}
	return bestAngle
}

// score shears dark pixels into rows along the candidate angle and returns
// the variance of the resulting projection profile.
func (e *ProjectionSkewEstimator) score(img *image.Gray, angleDeg float64, stride int) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	tan := math.Tan(angleDeg * math.Pi / 180)

	// Rows can shift by up to w·tan in either direction.
	margin := int(math.Ceil(math.Abs(tan)*float64(w))) + 1
	profile := make([]float64, h+2*margin)

	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			if img.GrayAt(x, y).Y < 128 {
				row := y + int(float64(x)*tan) + margin
				if row >= 0 && row < len(profile) {
					profile[row]++
				}
			}
		}
	}

	var sum float64
	for _, v := range profile {
		sum += v
	}
	mean := sum / float64(len(profile))

	var variance float64
	for _, v := range profile {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(profile))
}
