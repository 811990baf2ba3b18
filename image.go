package pics2pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/webp"
)

// decodeDimensions returns the pixel width and height of an encoded
// image without decoding the full pixel data.
func decodeDimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// transcodeWebPToJPEG re-encodes WebP bytes as baseline JPEG, the only
// raster format the assembler consumes. Pixel dimensions are preserved.
func transcodeWebPToJPEG(data []byte) ([]byte, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding webp: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
