package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	// Panoramic payloads embedded in e57 containers are JPEG or PNG.
	_ "image/png"

	"github.com/nfnt/resize"
)

// Processor decodes panoramic payloads, resizes them with Lanczos
// resampling and encodes JPEG output at a fixed quality. All three steps
// are deterministic for identical input.
type Processor struct {
	quality int
}

func NewProcessor(jpegQuality int) *Processor {
	return &Processor{quality: jpegQuality}
}

func (p *Processor) Decode(payload []byte) (image.Image, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	if format != "jpeg" && format != "png" {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return img, nil
}

// Resize always produces exactly width x height, stretching rather than
// cropping or padding: source panoramas are equirectangular full-sphere
// images, so the aspect ratio is already correct.
func (p *Processor) Resize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("source image has zero dimension")
	}

	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}

func (p *Processor) Encode(w io.Writer, img image.Image) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}
