package imaging

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Decode turns raw upload bytes into an image. Supported formats are the ones
// the upload allow-list admits as bitmaps: JPEG, PNG, TIFF and BMP. PDF bytes
// are not decodable here and fail like any other unknown format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
