package port

import (
	"image"
	"io"
)

// ImageProcessor decodes panoramic payloads, resizes them to the exact
// target dimensions (stretching, never cropping or padding), and encodes
// the result. Resize and Encode must be deterministic for identical input.
type ImageProcessor interface {
	Decode(payload []byte) (image.Image, error)
	Resize(img image.Image, width, height int) (image.Image, error)
	Encode(w io.Writer, img image.Image) error
}
